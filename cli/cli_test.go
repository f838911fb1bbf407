package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)

	tests := []struct {
		name  string
		roots []string
		env   string
		want  []string
	}{
		{name: "default", want: []string{"."}},
		{name: "flags", roots: []string{"src", "app/"}, want: []string{"src", "app"}},
		{name: "env", env: "src" + sep + "lib", want: []string{"src", "lib"}},
		{
			name:  "merged",
			roots: []string{"src"},
			env:   "lib" + sep + "./src",
			want:  []string{"src", "lib"},
		},
		{name: "blank", roots: []string{" "}, env: sep + sep, want: []string{"."}},
		{
			name:  "clean",
			roots: []string{filepath.Join("a", "..", "b")},
			want:  []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchPath(tt.roots, tt.env); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned",
			args: []string{"--log-level=debug", "--log-format=json", "check"},
			want: logConfig{Level: "debug", Format: "json", Pretty: true},
		},
		{
			name: "separate",
			args: []string{"outline", "--log-level", "info"},
			want: logConfig{Level: "info", Pretty: true},
		},
		{
			name: "bools",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Caller: true},
		},
		{
			name: "bool value",
			args: []string{"--log-caller=false", "--log-pretty=true"},
			want: logConfig{Pretty: true},
		},
		{
			name: "terminator",
			args: []string{"--", "--log-level=debug"},
			want: logConfig{Pretty: true},
		},
		{
			name: "unchecked level",
			args: []string{"--log-level=loud"},
			want: logConfig{Level: "loud", Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
