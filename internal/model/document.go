package model

import (
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/sha3"
)

// Document is the GO term list submitted to REVIGO.
// The content is passed through to the service as-is; revigodl never parses it.
type Document struct {
	// Path is the file the document was read from.
	Path string `json:"path"`

	// Content is the raw file content (GO id, TAB, p-value per line).
	Content []byte `json:"-"`

	// Digest is the hex encoded SHA3-256 of Content.
	Digest string `json:"digest"`
}

// NewDocument wraps content read from path and computes its digest.
func NewDocument(path string, content []byte) *Document {
	sum := sha3.Sum256(content)
	return &Document{
		Path:    path,
		Content: content,
		Digest:  hex.EncodeToString(sum[:]),
	}
}

// ReadDocument reads the whole file at path into a Document.
func ReadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read GO list: %w", err)
	}
	return NewDocument(path, content), nil
}

// Text returns the document content as a string, the form REVIGO expects it in.
func (d *Document) Text() string {
	return string(d.Content)
}
