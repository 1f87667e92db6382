package jot

import (
	_ "embed"
)

// Version is the released version of jot, read from the VERSION file.
//
//go:embed VERSION
var Version string
