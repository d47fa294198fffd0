package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewDocument tests digest computation.
func TestNewDocument(t *testing.T) {
	t.Parallel()

	t.Run("computes sha3-256 digest", func(t *testing.T) {
		t.Parallel()

		doc := NewDocument("go.txt", []byte(""))
		// SHA3-256 of the empty string
		expected := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
		if doc.Digest != expected {
			t.Errorf("got %q, expected %q", doc.Digest, expected)
		}
	})

	t.Run("text returns content unchanged", func(t *testing.T) {
		t.Parallel()

		content := "GO:0006950\t1e-5\nGO:0008150\t0.01\n"
		doc := NewDocument("go.txt", []byte(content))
		if doc.Text() != content {
			t.Errorf("got %q, expected %q", doc.Text(), content)
		}
	})

	t.Run("reads file from disk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "go.txt")
		if err := os.WriteFile(path, []byte("GO:0006950\t1e-5\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		doc, err := ReadDocument(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Path != path {
			t.Errorf("expected path %q, got %q", path, doc.Path)
		}
		if len(doc.Digest) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(doc.Digest))
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})
}

// TestRun tests run bookkeeping.
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("finish without error completes", func(t *testing.T) {
		t.Parallel()

		run := NewRun(NewDocument("go.txt", nil), "http://revigo.irb.hr/", "")
		run.Finish(nil)
		if run.Status != RunStatusCompleted {
			t.Errorf("expected completed, got %q", run.Status)
		}
		if run.Error != "" {
			t.Errorf("expected no error, got %q", run.Error)
		}
		if run.Duration() < 0 {
			t.Error("expected non-negative duration")
		}
	})

	t.Run("finish with error fails", func(t *testing.T) {
		t.Parallel()

		run := NewRun(NewDocument("go.txt", nil), "http://revigo.irb.hr/", "")
		run.Finish(errors.New("link not found"))
		if run.Status != RunStatusFailed {
			t.Errorf("expected failed, got %q", run.Status)
		}
		if run.Error != "link not found" {
			t.Errorf("unexpected error message %q", run.Error)
		}
	})

	t.Run("duration is zero before finish", func(t *testing.T) {
		t.Parallel()

		run := NewRun(NewDocument("go.txt", nil), "", "")
		if run.Duration() != 0 {
			t.Errorf("expected zero duration, got %s", run.Duration())
		}
		run.StartedAt = time.Now().Add(-time.Second)
		run.Finish(nil)
		if run.Duration() < time.Second {
			t.Errorf("expected at least 1s, got %s", run.Duration())
		}
	})

	t.Run("written skips suppressed artifacts", func(t *testing.T) {
		t.Parallel()

		run := NewRun(NewDocument("go.txt", nil), "", "")
		run.AddArtifact(ArtifactResult{Kind: TreemapScript, Path: "treemap.R"})
		run.AddArtifact(ArtifactResult{Kind: TreemapTable, Suppressed: true})
		written := run.Written()
		if len(written) != 1 || written[0].Kind != TreemapScript {
			t.Errorf("unexpected written artifacts: %+v", written)
		}
	})
}
