// Package cli contains the command line interface for hsmod.
//
// # Usage
//
// Every command loads the Haskell sources found under the project roots,
// given with --root or listed in $HSMOD_PATH, and defaults to the working
// directory:
//
//	hsmod outline src/Data/Queue.hs
//	hsmod resolve Data.Queue --usages
//	hsmod resolve --at app/Main.hs:2:18
//	hsmod rename Data.Queue.Internal Data.Queue.Core --write
//	hsmod check
//	hsmod find -i queue
//	hsmod watch
//
// Output is text by default; --output=json and --output=yaml encode the
// same records for other tools.
//
// # Configuration
//
// Flags may also be set in a YAML file, read from the user config
// directory (see [os.UserConfigDir]). Keys are flag names, optionally
// nested by their hyphenated prefix:
//
//	root: [./src, ./app]
//	output: json
//	log:
//	  level: info
//
// Command-line flags override the file. "hsmod init" writes the current
// flags to it.
//
// # Logging Options
//
//   - --log-level: Set minimum log level
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hsmod .
//
//   - --pprof-mode: Enable profiling (allocs, block, cpu, heap, ...)
//   - --pprof-dir: Set profile output directory
package cli
