// Package config provides configuration structures and utilities for revigodl.
// It defines the options controlling the REVIGO submission, which artifacts
// are written, how R is invoked, and where the run history lives.
package config
