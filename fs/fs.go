// Package fs embeds the assets the binaries need at runtime so a single
// build artifact can migrate its own database.
package fs

import "embed"

//go:embed migrations
var FS embed.FS
