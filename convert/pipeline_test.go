package convert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/fetch"
	"github.com/ardnew/rnprof/log"
	"github.com/ardnew/rnprof/pkg"
	"github.com/ardnew/rnprof/trace"
)

const testListing = `-rw------- 1 u0_a187 u0_a187 38211 2024-01-02 09:30 /data/user/0/com.example.app/cache/trace1.cpuprofile
-rw------- 1 u0_a187 u0_a187 12004 2024-01-01 12:00 /data/user/0/com.example.app/cache/trace2.cpuprofile
`

const (
	testBundle = "__d(function(){});\n"
	testMap    = `{"version":3,"sources":[],"names":[],"mappings":""}`
)

type fakeBridge struct {
	listing string
	listErr error
	pullErr error
	pulls   atomic.Int32
}

func (b *fakeBridge) ListProfiles(context.Context, string) (string, error) {
	return b.listing, b.listErr
}

func (b *fakeBridge) Pull(_ context.Context, devicePath, destDir string) (string, error) {
	b.pulls.Add(1)

	if b.pullErr != nil {
		return "", b.pullErr
	}

	local := filepath.Join(destDir, path.Base(devicePath))

	return local, os.WriteFile(local, []byte(`{"samples":[]}`), 0o600)
}

type devServer struct {
	*httptest.Server
	hits    atomic.Int32
	failMap bool
}

func newDevServer(t *testing.T) *devServer {
	t.Helper()

	s := &devServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)

		if r.URL.Query().Get("app") != "MyApp" {
			http.Error(w, "unknown app", http.StatusNotFound)

			return
		}

		switch r.URL.Path {
		case "/index.bundle":
			_, _ = io.WriteString(w, testBundle)
		case "/index.map":
			if s.failMap {
				http.Error(w, "bundling failed", http.StatusInternalServerError)

				return
			}

			_, _ = io.WriteString(w, testMap)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)

	return s
}

// echoTransformer checks its inputs and returns a fixed two-event trace.
var echoTransformer = trace.TransformerFunc(func(_ context.Context, in trace.Inputs) (trace.Trace, error) {
	for name, want := range map[string]string{in.Bundle: testBundle, in.SourceMap: testMap} {
		got, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}

		if string(got) != want {
			return nil, errors.New("unexpected content in " + name)
		}
	}

	if _, err := os.Stat(in.Profile); err != nil {
		return nil, err
	}

	return trace.Trace{
		json.RawMessage(`{"name":"foo","ph":"B","ts":1}`),
		json.RawMessage(`{"name":"foo","ph":"E","ts":2}`),
	}, nil
})

type fixture struct {
	bridge *fakeBridge
	server *devServer
	config Config
	opts   []Option
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := newDevServer(t)
	root := t.TempDir()

	return &fixture{
		bridge: &fakeBridge{listing: testListing},
		server: srv,
		config: Config{
			Package: "com.example.app",
			App:     "MyApp",
			Output:  filepath.Join(root, "out"),
			Scratch: filepath.Join(root, "scratch"),
			Endpoints: fetch.Endpoints{
				Server: srv.URL,
			},
		},
		opts: []Option{
			WithDownloader(fetch.NewClient(fetch.WithHTTPClient(srv.Client()), fetch.WithLogger(log.Logger{}))),
			WithTransformer(echoTransformer),
			WithLogger(log.Logger{}),
		},
	}
}

func (f *fixture) run(t *testing.T, opts ...Option) (string, error) {
	t.Helper()

	return New(f.config, f.bridge, append(f.opts, opts...)...).Run(t.Context())
}

func TestPipeline_EndToEnd(t *testing.T) {
	f := newFixture(t)

	// Resolve the displayed form, as an interactive prompt would.
	pick := SelectorFunc(func(_ context.Context, cs []capture.Candidate) (capture.Candidate, error) {
		return capture.Resolve(cs, cs[0].Display())
	})

	got, err := f.run(t, WithSelector(pick))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := filepath.Join(f.config.Output, "trace1-converted.json")
	if got != want {
		t.Errorf("Run = %q, want %q", got, want)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}

	if s := string(data); s != `[{"name":"foo","ph":"B","ts":1},{"name":"foo","ph":"E","ts":2}]` {
		t.Errorf("output = %s", s)
	}

	if n := f.bridge.pulls.Load(); n != 1 {
		t.Errorf("pulls = %d, want 1", n)
	}

	if _, err := os.Stat(filepath.Join(f.config.Scratch, "trace1.cpuprofile")); err != nil {
		t.Errorf("pulled profile missing from scratch: %v", err)
	}
}

func TestPipeline_EmptyListing(t *testing.T) {
	f := newFixture(t)
	f.bridge.listing = ""

	_, err := f.run(t)
	if !errors.Is(err, pkg.ErrSelection) || !errors.Is(err, capture.ErrNoCandidates) {
		t.Fatalf("expected selection error with ErrNoCandidates, got %v", err)
	}

	if n := f.bridge.pulls.Load(); n != 0 {
		t.Errorf("pulls = %d, want 0", n)
	}

	if n := f.server.hits.Load(); n != 0 {
		t.Errorf("server hits = %d, want 0", n)
	}
}

func TestPipeline_FilterExcludesAll(t *testing.T) {
	f := newFixture(t)

	flt, err := capture.CompileFilter(`FileName startsWith "sampling"`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.run(t, WithFilter(flt))
	if !errors.Is(err, capture.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	f := newFixture(t)

	first, err := f.run(t)
	if err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}

	second, err := f.run(t)
	if err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}

	if first != second || string(a) != string(b) {
		t.Errorf("runs differ: %q %q\n%s\n%s", first, second, a, b)
	}
}

func TestPipeline_TransformFailureWritesNothing(t *testing.T) {
	f := newFixture(t)

	failing := trace.TransformerFunc(func(context.Context, trace.Inputs) (trace.Trace, error) {
		return nil, errors.New("unsupported profile version")
	})

	_, err := f.run(t, WithTransformer(failing))
	if !errors.Is(err, pkg.ErrTransform) {
		t.Fatalf("expected ErrTransform, got %v", err)
	}

	entries, _ := os.ReadDir(f.config.Output)
	if len(entries) != 0 {
		t.Errorf("output directory should be empty, has %d entries", len(entries))
	}
}

func TestPipeline_InvalidTraceWritesNothing(t *testing.T) {
	f := newFixture(t)

	bad := trace.TransformerFunc(func(context.Context, trace.Inputs) (trace.Trace, error) {
		return trace.Trace{json.RawMessage(`{"ph":`)}, nil
	})

	if _, err := f.run(t, WithTransformer(bad)); !errors.Is(err, pkg.ErrTransform) {
		t.Fatalf("expected ErrTransform, got %v", err)
	}

	if _, err := os.Stat(OutputPath(f.config.Output, "trace1.cpuprofile")); !os.IsNotExist(err) {
		t.Errorf("output should not exist: %v", err)
	}
}

func TestPipeline_StageErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture)
		want  error
	}{
		{
			name:  "list",
			setup: func(f *fixture) { f.bridge.listErr = errors.New("device offline") },
			want:  pkg.ErrDevice,
		},
		{
			name:  "malformed listing",
			setup: func(f *fixture) { f.bridge.listing = "-rw 1 a b 2024-01-01 x.cpuprofile\n" },
			want:  pkg.ErrSelection,
		},
		{
			name:  "pull",
			setup: func(f *fixture) { f.bridge.pullErr = errors.New("permission denied") },
			want:  pkg.ErrDevice,
		},
		{
			name:  "download",
			setup: func(f *fixture) { f.server.failMap = true },
			want:  pkg.ErrTransfer,
		},
		{
			name:  "missing app",
			setup: func(f *fixture) { f.config.App = "" },
			want:  pkg.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, err := f.run(t)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if _, err := os.Stat(OutputPath(f.config.Output, "trace1.cpuprofile")); !os.IsNotExist(err) {
				t.Errorf("output should not exist: %v", err)
			}
		})
	}
}

func TestPipeline_SelectionAborted(t *testing.T) {
	f := newFixture(t)
	aborted := errors.New("aborted")

	abort := SelectorFunc(func(context.Context, []capture.Candidate) (capture.Candidate, error) {
		return capture.Candidate{}, aborted
	})

	_, err := f.run(t, WithSelector(abort))
	if !errors.Is(err, pkg.ErrSelection) || !errors.Is(err, aborted) {
		t.Fatalf("expected selection error wrapping abort, got %v", err)
	}

	if n := f.bridge.pulls.Load(); n != 0 {
		t.Errorf("pulls = %d, want 0", n)
	}
}

func TestPipeline_StaleScratchRemoved(t *testing.T) {
	f := newFixture(t)
	f.server.failMap = true

	if err := os.MkdirAll(f.config.Scratch, 0o755); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(f.config.Scratch, MapFile)
	if err := os.WriteFile(stale, []byte("truncated"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := f.run(t); !errors.Is(err, pkg.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale source map should be removed: %v", err)
	}
}

func TestPipeline_Candidates(t *testing.T) {
	f := newFixture(t)

	got, err := New(f.config, f.bridge, f.opts...).Candidates(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.FileName
	}

	if s := strings.Join(names, ","); s != "trace1.cpuprofile,trace2.cpuprofile" {
		t.Errorf("candidates = %s", s)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := Config{Package: "p", App: "a", Output: "o", Scratch: "s"}

	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"valid", func(*Config) {}, ""},
		{"package", func(c *Config) { c.Package = "" }, "-p or --package"},
		{"app", func(c *Config) { c.App = " " }, "-a or --app"},
		{"output", func(c *Config) { c.Output = "" }, "-o or --output"},
		{"server", func(c *Config) { c.Endpoints.Server = "localhost" }, "invalid endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.msg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, pkg.ErrConfig) || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("got %v, want config error containing %q", err, tt.msg)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct{ file, want string }{
		{"trace1.cpuprofile", "trace1-converted.json"},
		{"sampling.2024.cpuprofile", "sampling.2024-converted.json"},
		{"noext", "noext-converted.json"},
		{"a.b.cpuprofile", "a.b-converted.json"},
	}

	for _, tt := range tests {
		if got := OutputPath("out", tt.file); got != filepath.Join("out", tt.want) {
			t.Errorf("OutputPath(%q) = %q", tt.file, got)
		}
	}
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	name := filepath.Join(t.TempDir(), "nested", "t-converted.json")

	for _, content := range []string{"[1]", "[]"} {
		if err := WriteFile(name, []byte(content)); err != nil {
			t.Fatal(err)
		}

		got, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != content {
			t.Errorf("content = %s, want %s", got, content)
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(name))
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}
