package fetch

import (
	"errors"
	"net/url"
	"testing"
)

func TestEndpoints_URLs(t *testing.T) {
	e := DefaultEndpoints()

	bundle, err := e.BundleURL("MyApp")
	if err != nil {
		t.Fatal(err)
	}

	sourceMap, err := e.MapURL("MyApp")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		raw  string
		path string
	}{
		{bundle, "/index.bundle"},
		{sourceMap, "/index.map"},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.raw, err)
		}

		if u.Host != "localhost:8081" || u.Path != tt.path {
			t.Errorf("%q: host/path = %s%s, want localhost:8081%s", tt.raw, u.Host, u.Path, tt.path)
		}

		want := map[string]string{
			"platform":        "android",
			"dev":             "true",
			"lazy":            "true",
			"minify":          "false",
			"inlineSourceMap": "false",
			"modulesOnly":     "false",
			"runModule":       "true",
			"app":             "MyApp",
		}
		for k, v := range want {
			if got := u.Query().Get(k); got != v {
				t.Errorf("%q: %s = %q, want %q", tt.raw, k, got, v)
			}
		}
	}
}

func TestEndpoints_Overrides(t *testing.T) {
	e := Endpoints{Server: "http://10.0.2.2:19000/metro/", Entry: "/src/main", Platform: "ios"}

	got, err := e.BundleURL("A")
	if err != nil {
		t.Fatal(err)
	}

	u, _ := url.Parse(got)
	if u.Path != "/metro/src/main.bundle" {
		t.Errorf("path = %q", u.Path)
	}

	if p := u.Query().Get("platform"); p != "ios" {
		t.Errorf("platform = %q, want ios", p)
	}
}

func TestEndpoints_InvalidServer(t *testing.T) {
	for _, server := range []string{"localhost", "://bad", "http://"} {
		e := Endpoints{Server: server}
		if _, err := e.MapURL("A"); !errors.Is(err, ErrEndpoint) {
			t.Errorf("server %q: expected ErrEndpoint, got %v", server, err)
		}
	}
}
