package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nao1215/revigodl/internal/model"
)

// FileMode is the permission used for created artifacts.
const FileMode os.FileMode = 0o644

// Writer writes artifacts into a directory under a common prefix.
type Writer struct {
	dir    string
	prefix string
}

// NewWriter creates a Writer for dir. prefix is used verbatim; callers pass
// the normalized prefix (see config.NormalizePrefix).
func NewWriter(dir, prefix string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir, prefix: prefix}
}

// FileName returns the prefixed file name of kind.
func FileName(prefix string, kind model.ArtifactKind) string {
	return prefix + kind.FileName()
}

// Path returns the full path the artifact of kind is written to.
func (w *Writer) Path(kind model.ArtifactKind) string {
	return filepath.Join(w.dir, FileName(w.prefix, kind))
}

// Write stores body followed by the kind's trailer and reports what was written.
func (w *Writer) Write(kind model.ArtifactKind, body []byte) (model.ArtifactResult, error) {
	path := w.Path(kind)
	trailer := kind.Trailer()
	content := make([]byte, 0, len(body)+len(trailer)+1)
	content = append(content, body...)
	// The trailer is a line of its own.
	if len(trailer) > 0 && len(body) > 0 && !bytes.HasSuffix(body, []byte("\n")) {
		content = append(content, '\n')
	}
	content = append(content, trailer...)

	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return model.ArtifactResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FileMode) //nolint:gosec // Output path is built from user-chosen dir and prefix
	if err != nil {
		return model.ArtifactResult{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := f.Write(content)
	if err != nil {
		_ = f.Close()
		return model.ArtifactResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return model.ArtifactResult{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	return model.ArtifactResult{
		Kind:     kind,
		Path:     path,
		Size:     int64(n),
		MIMEType: mimetype.Detect(content).String(),
	}, nil
}
