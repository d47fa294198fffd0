package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/revigodl/internal/model"
)

// TestFileName tests the prefix handling.
func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		kind   model.ArtifactKind
		want   string
	}{
		{"", model.TreemapScript, "treemap.R"},
		{"run1_", model.TreemapScript, "run1_treemap.R"},
		{"run1_", model.ScatterTable, "run1_scatter.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := FileName(tt.prefix, tt.kind); got != tt.want {
				t.Errorf("FileName(%q, %q) = %q, want %q", tt.prefix, tt.kind, got, tt.want)
			}
		})
	}
}

// TestWriter tests writing artifacts to disk.
func TestWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes body verbatim", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := NewWriter(dir, "")
		body := []byte("term_ID,description\nGO:0006950,response to stress\n")

		result, err := w.Write(model.TreemapTable, body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "treemap.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(body) {
			t.Errorf("got %q, want %q", got, body)
		}
		if result.Size != int64(len(body)) {
			t.Errorf("expected size %d, got %d", len(body), result.Size)
		}
		if result.Path != filepath.Join(dir, "treemap.csv") {
			t.Errorf("unexpected path %q", result.Path)
		}
		if result.MIMEType == "" {
			t.Error("expected a detected MIME type")
		}
	})

	t.Run("appends scatter trailer", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := NewWriter(dir, "run1_")
		body := "library(ggplot2)\np1 <- ggplot(data = one.data)\n"

		if _, err := w.Write(model.ScatterScript, []byte(body)); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "run1_scatter.R"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != body+model.ScatterPDFSaveLine {
			t.Errorf("got %q, want body plus save line", got)
		}
	})

	t.Run("save line starts on its own line", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := NewWriter(dir, "")
		body := "library(ggplot2)\np1 <- ggplot(data = one.data)"

		result, err := w.Write(model.ScatterScript, []byte(body))
		if err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "scatter.R"))
		if err != nil {
			t.Fatal(err)
		}
		want := body + "\n" + model.ScatterPDFSaveLine
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if result.Size != int64(len(want)) {
			t.Errorf("expected size %d, got %d", len(want), result.Size)
		}
	})

	t.Run("tables without trailing newline stay verbatim", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := NewWriter(dir, "")
		body := "term_ID,description\nGO:0006950,response to stress"

		if _, err := w.Write(model.ScatterTable, []byte(body)); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "scatter.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != body {
			t.Errorf("got %q, want %q", got, body)
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := NewWriter(dir, "")
		if _, err := w.Write(model.TreemapScript, []byte(strings.Repeat("old\n", 100))); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(model.TreemapScript, []byte("new\n")); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "treemap.R"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "new\n" {
			t.Errorf("expected truncated overwrite, got %q", got)
		}
	})

	t.Run("creates output directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "out")
		w := NewWriter(dir, "")
		if _, err := w.Write(model.ScatterTable, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, "scatter.csv")); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})

	t.Run("empty dir defaults to working directory", func(t *testing.T) {
		t.Parallel()

		w := NewWriter("", "p_")
		if got := w.Path(model.TreemapScript); got != "p_treemap.R" {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		w := NewWriter(filepath.Join(file, "sub"), "")
		if _, err := w.Write(model.TreemapScript, []byte("x")); err == nil {
			t.Error("expected error when the output directory is a file")
		}
	})
}
