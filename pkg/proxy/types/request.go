package types

import (
	"bytes"
	"encoding/json"
)

// MessageRequest is the body of POST /api/messages.
//
//	{"message": "How can I reduce plastic use?"}
//
// Message is kept as raw JSON; Text decides what gets relayed.
type MessageRequest struct {
	Message json.RawMessage `json:"message"`
}

// Text returns the message to relay.
//
// An absent field and the falsy values null, false, 0, "", [] and {} all
// yield "", which the relay rejects. A string is returned as is. Any other
// value is relayed as its compact JSON text.
func (r *MessageRequest) Text() (string, error) {
	if r == nil || len(r.Message) == 0 {
		return "", nil
	}

	var v any
	if err := json.Unmarshal(r.Message, &v); err != nil {
		return "", err
	}

	switch m := v.(type) {
	case nil:
		return "", nil
	case string:
		return m, nil
	case bool:
		if !m {
			return "", nil
		}
	case float64:
		if m == 0 {
			return "", nil
		}
	case []any:
		if len(m) == 0 {
			return "", nil
		}
	case map[string]any:
		if len(m) == 0 {
			return "", nil
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, r.Message); err != nil {
		return "", err
	}
	return buf.String(), nil
}
