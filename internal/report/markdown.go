package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/revigodl/internal/database"
	"github.com/nao1215/revigodl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteRun outputs the run summary in Markdown format.
func (w *MarkdownWriter) WriteRun(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeAlert(md, run)
	w.writeArtifacts(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("REVIGO Run Summary")
	md.PlainText("")

	input, digest := "-", "-"
	if run.Document != nil {
		input = "`" + run.Document.Path + "`"
		digest = "`" + shortDigest(run.Document.Digest) + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", input},
			{"Digest", digest},
			{"Service", run.ServiceURL},
			{"Prefix", prefixText(run.Prefix)},
			{"Started", formatTime(run.StartedAt)},
			{"Duration", formatDuration(run)},
			{"Status", statusText(run.Status)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert describing the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.Run) {
	switch {
	case run.Status == model.RunStatusFailed:
		md.Warningf("Run failed: %s. Files written before the failure were kept.", run.Error)
	case len(run.Written()) == 0:
		md.Note("All artifacts were suppressed. Nothing was written.")
	default:
		md.Tip("R was started for every written script. Check the .Rout files for R errors.")
	}
	md.PlainText("")
}

// writeArtifacts writes the per-artifact table.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, run *model.Run) {
	md.H2("Artifacts")
	md.PlainText("")

	rows := artifactRows(run)
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		file := r.file
		if r.size != "-" {
			file = "`" + file + "`"
		}
		table = append(table, []string{r.label, file, r.size, r.mime, r.render})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Artifact", "File", "Size", "Type", "R"},
		Rows:   table,
	})
	md.PlainText("")
}

// WriteHistory outputs the run history as a Markdown table.
func (w *MarkdownWriter) WriteHistory(records []database.RunRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		input := "-"
		if rec.Run.Document != nil {
			input = "`" + rec.Run.Document.Path + "`"
		}
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			formatTime(rec.Run.StartedAt),
			input,
			prefixText(rec.Run.Prefix),
			statusText(rec.Run.Status),
			writtenCount(rec.Run),
			formatDuration(rec.Run),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Input", "Prefix", "Status", "Written", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by revigodl*")
}
