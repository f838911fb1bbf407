package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want map[string]string
	}{
		{
			name: "flat",
			doc:  "output: json\nindent: 4\n",
			want: map[string]string{"output": "json", "indent": "4"},
		},
		{
			name: "nested",
			doc:  "log:\n  level: debug\n  caller: true\n",
			want: map[string]string{"log-level": "debug", "log-caller": "true"},
		},
		{
			name: "underscore",
			doc:  "log_time_layout: Kitchen\n",
			want: map[string]string{"log-time-layout": "Kitchen"},
		},
		{
			name: "list",
			doc:  "root:\n  - ./src\n  - ./app\n",
			want: map[string]string{"root": "./src,./app"},
		},
		{
			name: "null",
			doc:  "output:\n",
			want: map[string]string{},
		},
		{
			name: "empty",
			doc:  "",
			want: map[string]string{},
		},
		{
			name: "invalid",
			doc:  "output: [json\n",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := loadConfig(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("loadConfig failed: %v", err)
			}

			cfg, ok := r.(config)
			if !ok {
				t.Fatalf("unexpected resolver type %T", r)
			}

			if len(cfg) != len(tt.want) {
				t.Fatalf("got keys %v, want %d keys", cfg.Keys(), len(tt.want))
			}

			for key, want := range tt.want {
				if got := cfg[key]; got != want {
					t.Errorf("%s = %v, want %s", key, got, want)
				}
			}
		})
	}
}

func TestConfig_Keys(t *testing.T) {
	cfg := config{"root": ".", "indent": "2", "log-level": "info"}

	want := []string{"indent", "log-level", "root"}
	if got := cfg.Keys(); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestConfig_Resolve(t *testing.T) {
	var app struct {
		Root   []string `name:"root"`
		Output string   `default:"text"`
		Indent int      `default:"2"`
		Log    struct {
			Level string `default:"warn"`
		} `embed:"" prefix:"log-"`
	}

	path := filepath.Join(t.TempDir(), "config.yaml")

	doc := "root: [src, app]\nindent: 4\nlog:\n  level: debug\noutput: yaml\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&app, kong.Configuration(loadConfig, path))
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}

	if _, err := parser.Parse([]string{"--output=json"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !slices.Equal(app.Root, []string{"src", "app"}) {
		t.Errorf("root = %v", app.Root)
	}

	if app.Indent != 4 {
		t.Errorf("indent = %d, want 4", app.Indent)
	}

	if app.Log.Level != "debug" {
		t.Errorf("log-level = %s, want debug", app.Log.Level)
	}

	// Flags override the file.
	if app.Output != "json" {
		t.Errorf("output = %s, want json", app.Output)
	}
}
