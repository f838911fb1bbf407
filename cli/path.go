package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/ardnew/hsmod/pkg"
)

// configFile is the base name of the YAML configuration file.
const configFile = "config.yaml"

var defaultDirMode os.FileMode = 0o700

// basePrefix returns the name used for the config and cache directories.
//
// It is the base name of the executable file with these substitutions:
//   - "__debug_bin" (default output of the dlv debugger): replaced with hsmod
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): pkg.Name,
			regexp.MustCompile(`^\.+`):             "",
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			id = pkg.Name
		}

		return id
	},
)

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), basePrefix())
	},
)

// cacheDir returns the cache directory path used for profiles.
var cacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), basePrefix())
	},
)

// userDir returns the directory reported by fn, falling back to fallback
// under the home directory and then to the working directory.
func userDir(fn func() (string, error), fallback string) string {
	if dir, err := fn(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPath merges the --root flags with the roots listed in env, in that
// order, dropping blank and duplicate entries. The working directory is
// used when both are empty.
func searchPath(roots []string, env string) []string {
	subject := make([]string, 0, len(roots))
	for _, r := range slices.Concat(roots, filepath.SplitList(env)) {
		if strings.TrimSpace(r) != "" {
			subject = append(subject, filepath.Clean(r))
		}
	}

	merged := slices.Collect(mung.Make(
		mung.WithSubjectItems(subject...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).Filtered())

	if len(merged) == 0 {
		return []string{"."}
	}

	return merged
}
