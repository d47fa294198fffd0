package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/revigodl/internal/database"
	"github.com/nao1215/revigodl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteRun outputs the run summary in plain text.
func (w *SimpleWriter) WriteRun(run *model.Run) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("REVIGO RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	if run.Document != nil {
		sb.WriteString(fmt.Sprintf("Input:    %s (%s)\n", run.Document.Path, shortDigest(run.Document.Digest)))
	}
	sb.WriteString(fmt.Sprintf("Service:  %s\n", run.ServiceURL))
	sb.WriteString(fmt.Sprintf("Prefix:   %s\n", prefixText(run.Prefix)))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", formatDuration(run)))
	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:   %s - %s\n", statusText(run.Status), run.Error))
	} else {
		sb.WriteString(fmt.Sprintf("Status:   %s\n", statusText(run.Status)))
	}
	sb.WriteString("\n")

	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARTIFACT\tFILE\tSIZE\tR")
	for _, r := range artifactRows(run) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.label, r.file, r.size, r.render)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs the run history in plain text.
func (w *SimpleWriter) WriteHistory(records []database.RunRecord) (int, error) {
	if len(records) == 0 {
		return io.WriteString(w.output, "No runs recorded.\n")
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tINPUT\tPREFIX\tSTATUS\tWRITTEN")
	for _, rec := range records {
		input := "-"
		if rec.Run.Document != nil {
			input = rec.Run.Document.Path
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, formatTime(rec.Run.StartedAt), input, prefixText(rec.Run.Prefix),
			statusText(rec.Run.Status), writtenCount(rec.Run))
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return w.output.Write([]byte(sb.String()))
}
