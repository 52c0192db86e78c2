package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"relayhq/azrelay/pkg/proxy/types"
)

// WriteJSONResponse writes data as JSON with statusCode. Responses are never
// cached.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteMessageResponse writes 200 {"response": reply}.
func WriteMessageResponse(w http.ResponseWriter, reply string) error {
	return WriteJSONResponse(w, http.StatusOK, &types.MessageResponse{Response: reply})
}

// WriteErrorResponse writes {"error": ...} with statusCode.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}
