package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/hsmod/log"
)

// loadConfig is a [kong.ConfigurationLoader] for YAML config files.
//
// Keys are flag names. Nested mappings are joined with hyphens and
// underscores may stand in for hyphens, so these are equivalent:
//
//	log-level: debug
//
//	log_level: debug
//
//	log:
//	  level: debug
//
// Sequences become repeated values of slice flags:
//
//	root:
//	  - ./src
//	  - ./app
//
// Command-line flags override config file values. A file that is not valid
// YAML is reported and ignored.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring invalid config file", slog.Any("error", err))
		}

		return config{}, nil
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened flag names.
type config map[string]any

// flatten stores every scalar and sequence of m under its hyphenated path.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(name, v)

		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = fmt.Sprint(item)
			}

			c[name] = strings.Join(items, ",")

		case nil:

		default:
			// kong parses numbers and booleans from their text form.
			c[name] = fmt.Sprint(v)
		}
	}
}

// Keys returns the flattened flag names in sorted order.
func (c config) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil // unset, kong falls back to the default
}
