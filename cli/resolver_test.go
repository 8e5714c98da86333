package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/rnprof/pkg"
)

func TestLoadYAML_Flattens(t *testing.T) {
	const doc = `
log:
  level: debug
  pretty: false
package: com.example.app
transform_cmd: node transform.js
retries: 3
ratio: 0.5
tags: [a, 1]
`

	r, err := loadYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	want := config{
		"log-level":     "debug",
		"log-pretty":    "false",
		"package":       "com.example.app",
		"transform-cmd": "node transform.js",
		"retries":       "3",
		"ratio":         "0.5",
		"tags":          []string{"a", "1"},
	}

	if diff := cmp.Diff(want, r.(config)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	r, err := loadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}

	if len(r.(config)) != 0 {
		t.Errorf("expected empty config, got %v", r)
	}
}

func TestLoadYAML_Malformed(t *testing.T) {
	_, err := loadYAML(strings.NewReader("log: [unterminated\n"))
	if !errors.Is(err, pkg.ErrConfig) {
		t.Fatalf("expected pkg.ErrConfig, got %v", err)
	}
}

func TestLoadYAML_AppliesToFlags(t *testing.T) {
	var cli struct {
		Log struct {
			Level  string `default:"info"`
			Pretty bool   `default:"true" negatable:""`
		} `embed:"" prefix:"log-"`

		Package string
		Latest  bool
	}

	r, err := loadYAML(strings.NewReader("log_level: debug\nlog:\n  pretty: false\npackage: from.config\n"))
	if err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli, kong.Resolvers(r))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--package=from.flag"}); err != nil {
		t.Fatal(err)
	}

	if cli.Log.Level != "debug" || cli.Log.Pretty || cli.Package != "from.flag" {
		t.Errorf("unexpected values: %+v", cli)
	}
}
