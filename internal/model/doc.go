// Package model defines the data structures shared by the revigodl packages.
//
// This package contains the following main types:
//   - Document: The GO term list submitted to REVIGO
//   - ArtifactKind: One of the four files REVIGO generates per submission
//   - Run: The outcome of a single revigodl invocation
//
// The models have no dependencies on the session, workflow or storage
// packages so that all of them can import model without cycles.
package model
