package proxy

import (
	"net/http"

	"relayhq/azrelay/pkg/proxy/types"
	"relayhq/azrelay/pkg/relay"
)

// HandleError maps a relay error to the HTTP status and fixed message
// returned to the caller. Upstream errors keep the upstream's status code;
// everything that is not a recognised category is a 500.
//
// Example usage:
//
//	if err != nil {
//	    status, errResp := HandleError(err)
//	    WriteErrorResponse(w, status, errResp)
//	    return
//	}
func HandleError(err error) (int, *types.ErrorResponse) {
	switch relay.Classify(err) {
	case relay.CategoryClientInput:
		return http.StatusBadRequest, types.NewErrorResponse(types.MsgNoMessage)
	case relay.CategoryUpstream:
		return upstreamStatus(err), types.NewErrorResponse(types.MsgUpstreamFailed)
	case relay.CategoryTransport:
		return http.StatusInternalServerError, types.NewErrorResponse(types.MsgRequestFailed)
	case relay.CategoryTLS:
		return http.StatusInternalServerError, types.NewErrorResponse(types.MsgTLSVerification)
	default:
		return http.StatusInternalServerError, types.NewErrorResponse(types.MsgInternal)
	}
}

// upstreamStatus returns the upstream status, falling back to 502 when it
// is not a valid HTTP status code.
func upstreamStatus(err error) int {
	status := relay.UpstreamStatus(err)
	if status < 100 || status > 999 {
		return http.StatusBadGateway
	}
	return status
}
