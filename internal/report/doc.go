// Package report renders run summaries and the run history.
//
// Three formats are supported:
//   - text: plain text for terminal display
//   - markdown: GitHub-flavored markdown built with nao1215/markdown
//   - json: structured output for scripting
//
// Writers implement the Writer interface, so callers pick a format with
// NewWriter and never depend on a concrete type.
package report
