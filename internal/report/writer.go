package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/revigodl/internal/database"
	"github.com/nao1215/revigodl/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format names an output format.
type Format string

const (
	// FormatText is plain text.
	FormatText Format = "text"

	// FormatMarkdown is GitHub-flavored markdown.
	FormatMarkdown Format = "markdown"

	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by NewWriter for unsupported formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats returns the supported format names.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON}
}

// Writer defines the interface for report output.
type Writer interface {
	// WriteRun outputs the summary of a single run.
	// Returns the number of bytes written and any error encountered.
	WriteRun(run *model.Run) (int, error)

	// WriteHistory outputs a list of stored runs, newest first.
	WriteHistory(records []database.RunRecord) (int, error)
}

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// row is the display form of one artifact of a run.
type row struct {
	label  string
	file   string
	size   string
	mime   string
	render string
}

// artifactRows lists every artifact kind in download order, including
// kinds the run never reached.
func artifactRows(run *model.Run) []row {
	byKind := make(map[model.ArtifactKind]model.ArtifactResult, len(run.Artifacts))
	for _, a := range run.Artifacts {
		byKind[a.Kind] = a
	}

	rows := make([]row, 0, len(model.AllArtifactKinds()))
	for _, kind := range model.AllArtifactKinds() {
		r := row{label: kind.Label(), file: "-", size: "-", mime: "-", render: "-"}
		a, reached := byKind[kind]
		switch {
		case !reached:
			r.file = "not reached"
		case a.Suppressed:
			r.file = "suppressed"
		default:
			r.file = a.Path
			r.size = humanize.Bytes(uint64(a.Size)) //nolint:gosec // sizes are never negative
			if a.MIMEType != "" {
				r.mime = a.MIMEType
			}
			if a.Rendered {
				r.render = "started"
			}
		}
		rows = append(rows, r)
	}
	return rows
}

// statusText returns the run status in title case.
func statusText(status model.RunStatus) string {
	if status == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(string(status))
}

// prefixText returns the prefix for display.
func prefixText(prefix string) string {
	if prefix == "" {
		return "(none)"
	}
	return prefix
}

// shortDigest returns the first 12 characters of a digest.
func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}

const timeLayout = "2006-01-02 15:04:05 MST"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatDuration(run *model.Run) string {
	d := run.Duration()
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func writtenCount(run *model.Run) string {
	return fmt.Sprintf("%d/%d", len(run.Written()), len(model.AllArtifactKinds()))
}
