package types

// MessageResponse is the success body of POST /api/messages. Response is
// the content of the upstream's first choice.
type MessageResponse struct {
	Response string `json:"response"`
}
