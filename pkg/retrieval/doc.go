// Package retrieval declares the document embedding and retrieval
// capability behind document upload.
//
// No backend is implemented. Unimplemented reports ErrNotImplemented for
// every call, and the upload endpoint turns that into 501.
package retrieval
