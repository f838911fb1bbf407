package lang

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// IsValidModuleName reports whether s is a module name: one or more
// constructor identifiers separated by single dots, e.g. "Data.Map.Strict".
func IsValidModuleName(s string) bool {
	return ValidateModuleName(s) == nil
}

// ValidateModuleName checks s against the module name grammar
//
//	modid → conid { '.' conid }
//	conid → large { small | large | digit | '_' | '\'' }
//
// and returns [ErrMalformedIdentifier] describing the first violation.
func ValidateModuleName(s string) error {
	malformed := func(reason string, offset int) error {
		return ErrMalformedIdentifier.With(
			slog.String("name", s),
			slog.String("reason", reason),
			slog.Int("offset", offset),
		)
	}

	if s == "" {
		return malformed("empty name", 0)
	}

	if !utf8.ValidString(s) {
		return malformed("invalid UTF-8", 0)
	}

	offset := 0

	for segment := range strings.SplitSeq(s, ".") {
		if segment == "" {
			return malformed("empty segment", offset)
		}

		for i, r := range segment {
			switch {
			case i == 0 && !isLarge(r):
				return malformed("segment must start with an uppercase letter", offset)

			case i > 0 && !isIdentContinue(r):
				return malformed("invalid character "+string(r), offset+i)
			}
		}

		offset += len(segment) + 1
	}

	return nil
}
