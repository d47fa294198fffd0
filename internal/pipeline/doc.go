// Package pipeline runs the REVIGO download as an ordered list of steps.
//
// The default pipeline has five steps:
//  1. submit: post the GO list and submit the REVIGO form
//  2. treemap.R: follow the treemap script link, write it, render it
//  3. treemap.csv: go back, follow the treemap export link, write it
//  4. scatter.R: go back, follow the scatter script link, write it with
//     the PDF save line appended, render it
//  5. scatter.csv: go back, follow the scatter export link, write it
//
// Every artifact step navigates even when its artifact is suppressed, so a
// missing link always fails the run. The pipeline stops at the first error
// and leaves files from earlier steps in place.
package pipeline
