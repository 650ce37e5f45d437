package shape

import _ "embed"

// Version is the release of the shape module, read from the VERSION file.
//
//go:embed VERSION
var Version string
