// Package revigotest provides an in-process fake of the REVIGO web service
// and a recording R runner for tests.
package revigotest
