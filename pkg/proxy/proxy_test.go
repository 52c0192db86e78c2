package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"relayhq/azrelay/pkg/providers"
	"relayhq/azrelay/pkg/proxy/types"
	"relayhq/azrelay/pkg/relay"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no message", relay.ErrNoMessage, http.StatusBadRequest, types.MsgNoMessage},
		{"upstream 404", &providers.UpstreamError{StatusCode: 404}, http.StatusNotFound, types.MsgUpstreamFailed},
		{"upstream 500", &providers.UpstreamError{StatusCode: 500}, http.StatusInternalServerError, types.MsgUpstreamFailed},
		{"upstream 201", &providers.UpstreamError{StatusCode: 201}, http.StatusCreated, types.MsgUpstreamFailed},
		{"upstream invalid status", &providers.UpstreamError{StatusCode: 0}, http.StatusBadGateway, types.MsgUpstreamFailed},
		{"transport", &providers.TransportError{Cause: errors.New("dial tcp: connection refused")}, http.StatusInternalServerError, types.MsgRequestFailed},
		{"tls", &providers.TLSVerificationError{Cause: errors.New("x509")}, http.StatusInternalServerError, types.MsgTLSVerification},
		{"parse", &providers.ParseError{Cause: errors.New("invalid character")}, http.StatusInternalServerError, types.MsgInternal},
		{"internal", &relay.InternalError{Op: "extract reply", Cause: errors.New("no choices")}, http.StatusInternalServerError, types.MsgInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, types.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := HandleError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestParseMessageRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		maxBytes    int64
		wantMessage string
		wantErr     bool
	}{
		{"message", `{"message":"hello"}`, 0, "hello", false},
		{"extra fields ignored", `{"message":"hello","history":[]}`, 0, "hello", false},
		{"trailing whitespace", "{\"message\":\"hello\"}\n", 0, "hello", false},
		{"absent", `{}`, 0, "", false},
		{"whitespace kept", `{"message":"  "}`, 0, "  ", false},
		{"number relayed as text", `{"message":42}`, 0, "42", false},
		{"false", `{"message":false}`, 0, "", false},
		{"empty body", ``, 0, "", true},
		{"null body", `null`, 0, "", true},
		{"not an object", `["hello"]`, 0, "", true},
		{"string body", `"hello"`, 0, "", true},
		{"too large", `{"message":"hello world"}`, 8, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(tt.body))
			req, err := ParseMessageRequest(httptest.NewRecorder(), r, tt.maxBytes)

			if tt.wantErr {
				var internal *relay.InternalError
				if !errors.As(err, &internal) {
					t.Fatalf("error = %v, want *relay.InternalError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMessageRequest() error = %v", err)
			}
			message, err := req.Text()
			if err != nil {
				t.Fatalf("Text() error = %v", err)
			}
			if message != tt.wantMessage {
				t.Errorf("Text() = %q, want %q", message, tt.wantMessage)
			}
		})
	}
}

func TestWriteMessageResponse(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteMessageResponse(w, "Use a <reusable> bottle & bag."); err != nil {
		t.Fatalf("WriteMessageResponse() error = %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var body types.MessageResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Response != "Use a <reusable> bottle & bag." {
		t.Errorf("Response = %q", body.Response)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	_ = WriteErrorResponse(w, http.StatusBadRequest, types.NewErrorResponse(types.MsgNoMessage))

	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"No message provided"}` {
		t.Errorf("body = %s", got)
	}
}
