package handlers

import (
	"log/slog"
	"net/http"

	"relayhq/azrelay/pkg/proxy"
	"relayhq/azrelay/pkg/proxy/types"
	"relayhq/azrelay/pkg/relay"
	"relayhq/azrelay/pkg/retrieval"
	"relayhq/azrelay/pkg/telemetry/logging"
)

// UploadHandler serves POST /upload. The body is not read; the request is
// handed to the retrieval capability, which currently reports that it is
// not implemented.
type UploadHandler struct {
	capability retrieval.Capability
	logger     *slog.Logger
}

// NewUploadHandler creates an upload handler. A nil capability uses
// retrieval.Unimplemented.
func NewUploadHandler(capability retrieval.Capability, logger *slog.Logger) *UploadHandler {
	if capability == nil {
		capability = retrieval.Unimplemented{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{capability: capability, logger: logger}
}

// ServeHTTP answers 501 while the capability reports ErrNotImplemented
// and 500 for any other capability failure. Multipart parsing is added
// together with a real capability.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.capability.CreateEmbeddings(ctx, nil); err != nil && !retrieval.IsNotImplemented(err) {
		h.logger.ErrorContext(ctx, "document upload failed",
			"category", relay.CategoryInternal,
			logging.Err(err),
		)
		_ = proxy.WriteErrorResponse(w, http.StatusInternalServerError, types.NewErrorResponse(types.MsgInternal))
		return
	}

	h.logger.InfoContext(ctx, "document upload requested but not implemented")
	_ = proxy.WriteErrorResponse(w, http.StatusNotImplemented, types.NewErrorResponse(types.MsgUploadUnsupported))
}
