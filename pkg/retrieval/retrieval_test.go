package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestUnimplemented(t *testing.T) {
	var c Capability = Unimplemented{}
	ctx := context.Background()

	embeddings, err := c.CreateEmbeddings(ctx, []Document{{Name: "test.txt", Content: []byte("test file content")}})
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("CreateEmbeddings() error = %v, want ErrNotImplemented", err)
	}
	if embeddings != nil {
		t.Errorf("CreateEmbeddings() = %v, want nil", embeddings)
	}

	passages, err := c.Retrieve(ctx, "How can I reduce plastic use?", 3)
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Retrieve() error = %v, want ErrNotImplemented", err)
	}
	if passages != nil {
		t.Errorf("Retrieve() = %v, want nil", passages)
	}
}

func TestIsNotImplemented(t *testing.T) {
	if !IsNotImplemented(fmt.Errorf("upload: %w", ErrNotImplemented)) {
		t.Error("IsNotImplemented(wrapped) = false, want true")
	}
	if IsNotImplemented(errors.New("disk full")) {
		t.Error("IsNotImplemented(other) = true, want false")
	}
}
