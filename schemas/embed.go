// Package schemas holds the JSON Schemas for files the CLI reads: job
// posting imports and the config file.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS
