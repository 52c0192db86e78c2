package types

// ErrorResponse is the body of every error returned by the relay.
//
//	{"error": "No message provided"}
//
// Messages are fixed per outcome category. Upstream bodies, transport
// errors and stack traces never appear here.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Caller-visible error messages.
const (
	MsgNoMessage         = "No message provided"
	MsgUpstreamFailed    = "Failed to get a response from Azure OpenAI"
	MsgRequestFailed     = "Request Failed"
	MsgTLSVerification   = "SSL Certificate Verification Failed"
	MsgInternal          = "Internal Server Error"
	MsgUploadUnsupported = "Document upload is not implemented"
)

// NewErrorResponse creates an error body with message.
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}
