package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"relayhq/azrelay/pkg/proxy"
	"relayhq/azrelay/pkg/relay"
	"relayhq/azrelay/pkg/telemetry/logging"
)

// Relayer sends one message upstream and returns the reply.
// *relay.Service implements it.
type Relayer interface {
	Relay(ctx context.Context, message string) (string, error)
}

// MessagesHandler serves POST /api/messages.
type MessagesHandler struct {
	relayer      Relayer
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewMessagesHandler creates a handler that reads bodies of at most
// maxBodyBytes. A nil logger uses slog.Default().
func NewMessagesHandler(relayer Relayer, maxBodyBytes int64, logger *slog.Logger) *MessagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessagesHandler{
		relayer:      relayer,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// ServeHTTP decodes {"message": ...}, relays it and writes either
// {"response": ...} or the fixed error body for the failure category.
func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := proxy.ParseMessageRequest(w, r, h.maxBodyBytes)
	if err != nil {
		h.rejectBody(ctx, w, err)
		return
	}

	message, err := req.Text()
	if err != nil {
		h.rejectBody(ctx, w, &relay.InternalError{Op: "decode message", Cause: err})
		return
	}

	reply, err := h.relayer.Relay(ctx, message)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	if err := proxy.WriteMessageResponse(w, reply); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", logging.Err(err))
	}
}

// rejectBody logs and answers a body the relay never saw.
func (h *MessagesHandler) rejectBody(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.ErrorContext(ctx, "internal error relaying message",
		"category", relay.CategoryInternal,
		logging.Err(err),
	)
	h.writeError(ctx, w, err)
}

func (h *MessagesHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, errResp := proxy.HandleError(err)
	if err := proxy.WriteErrorResponse(w, status, errResp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", logging.Err(err))
	}
}
