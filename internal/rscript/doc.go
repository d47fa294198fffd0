// Package rscript runs the downloaded R scripts through the R interpreter.
//
// Rendering is best effort. The exit status of R is logged at debug level
// and never reported to the caller, so a missing R installation or a failing
// script does not fail the download.
package rscript
