// Package cmd implements the rnprof subcommands: convert, list and init.
package cmd

// Kong variable identifiers shared with package cli.
//
//nolint:gochecknoglobals
var (
	// CacheIdentifier names the path to the per-user cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the path to the YAML configuration file.
	ConfigIdentifier = "config"

	// ScratchIdentifier names the default scratch directory.
	ScratchIdentifier = "scratch"
)
