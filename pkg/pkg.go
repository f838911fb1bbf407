//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of hsmod embedded at build time.
// It is printed by the CLI's --version flag.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command name. It appears in help text, the
	// default config and cache paths, and the HSMOD_PATH variable.
	Name = "hsmod"
	// Description is a short, human-readable summary used in help output.
	Description = "Resolve, search and rename Haskell module identifiers"
	// PathEnv names the environment variable holding additional project
	// roots, separated by the OS path list separator.
	PathEnv = "HSMOD_PATH"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
