// Package main provides the entry point for the revigodl CLI.
//
// revigodl submits a GO term list to the REVIGO web service, downloads the
// treemap and scatterplot R scripts and CSV tables it generates, and runs
// the scripts through R to render PDFs.
//
// Usage:
//
//	revigodl [flags] <gofile>
//	revigodl history
//
// See --help for all available options.
package main

// main is the entry point for revigodl.
func main() {
	Execute()
}
