// Package cmd implements the hsmod subcommands.
//
// Every command loads the project found under the configured roots, runs one
// operation of package project and writes the result to standard output in
// the selected encoding. Global flags reach the commands through the
// context: see [WithContext] and [WithOptions].
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the YAML
	// configuration file.
	ConfigIdentifier = "config"
)
