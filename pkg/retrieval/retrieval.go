package retrieval

import (
	"context"
	"errors"
)

// ErrNotImplemented is returned by every operation of the default
// capability. Callers map it to 501 Not Implemented.
var ErrNotImplemented = errors.New("retrieval: not implemented")

// Document is an uploaded source document.
type Document struct {
	Name    string
	Content []byte
}

// Embedding is the vector representation of one document chunk.
type Embedding struct {
	Document string
	Vector   []float32
}

// Passage is a retrieved excerpt used to ground a reply.
type Passage struct {
	Document string
	Text     string
	Score    float64
}

// Capability is document embedding and retrieval for retrieval-augmented
// replies. Upload and message handlers depend on it rather than on a
// concrete store.
type Capability interface {
	// CreateEmbeddings embeds and stores docs.
	CreateEmbeddings(ctx context.Context, docs []Document) ([]Embedding, error)

	// Retrieve returns up to limit passages relevant to query.
	Retrieve(ctx context.Context, query string, limit int) ([]Passage, error)
}

// Unimplemented is the Capability used when no retrieval backend exists.
// It performs no parsing or storage and never silently succeeds.
type Unimplemented struct{}

var _ Capability = Unimplemented{}

// CreateEmbeddings always returns ErrNotImplemented.
func (Unimplemented) CreateEmbeddings(context.Context, []Document) ([]Embedding, error) {
	return nil, ErrNotImplemented
}

// Retrieve always returns ErrNotImplemented.
func (Unimplemented) Retrieve(context.Context, string, int) ([]Passage, error) {
	return nil, ErrNotImplemented
}

// IsNotImplemented reports whether err means the capability is absent.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
