//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the rnprof module embedded at build
// time from the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command identifier. It appears in help text and in
	// the default configuration and cache paths.
	Name = "rnprof"
	// Description is a short summary of the command used in help output.
	Description = "Pull Hermes CPU profiles from Android devices and convert them to symbolicated traces"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
