// Package artifact writes the files downloaded from REVIGO.
//
// Every artifact lands in the output directory as <prefix><name>, where the
// prefix already carries its trailing underscore. Files are created or
// truncated, so a second run with the same prefix overwrites the first.
package artifact
