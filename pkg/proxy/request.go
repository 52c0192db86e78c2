package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"relayhq/azrelay/pkg/proxy/types"
	"relayhq/azrelay/pkg/relay"
)

// DefaultMaxBodyBytes bounds a message request body when no limit is
// configured.
const DefaultMaxBodyBytes = 1 << 20

// ParseMessageRequest decodes a POST /api/messages body.
//
// A body that is not a single JSON object, including a literal null, is an
// *relay.InternalError. The body is read through http.MaxBytesReader, so
// an oversized body fails the same way. A missing or falsy message is not
// an error here; the relay rejects it so that every rejection goes through
// one path.
//
// Example usage:
//
//	req, err := ParseMessageRequest(w, r, cfg.Server.MaxBodyBytes)
//	if err != nil {
//	    return err
//	}
//	message, err := req.Text()
func ParseMessageRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*types.MessageRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &relay.InternalError{
				Op:    "read request body",
				Cause: fmt.Errorf("body exceeds %d bytes: %w", maxErr.Limit, err),
			}
		}
		return nil, &relay.InternalError{Op: "decode request body", Cause: err}
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &relay.InternalError{
			Op:    "decode request body",
			Cause: errors.New("unexpected data after JSON object"),
		}
	}

	if bytes.Equal(raw, []byte("null")) {
		return nil, &relay.InternalError{
			Op:    "decode request body",
			Cause: errors.New("request body is null"),
		}
	}

	var req types.MessageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &relay.InternalError{Op: "decode request body", Cause: err}
	}

	return &req, nil
}
