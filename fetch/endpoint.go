package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Defaults for the development server.
const (
	DefaultServer   = "http://localhost:8081"
	DefaultEntry    = "index"
	DefaultPlatform = "android"
)

// ErrEndpoint is returned for an unusable server URL or entry module.
var ErrEndpoint = errors.New("invalid endpoint")

// Endpoints describes where the development server publishes the bundle and
// source map of an application.
type Endpoints struct {
	Server   string `json:"server"   yaml:"server"`
	Entry    string `json:"entry"    yaml:"entry"`
	Platform string `json:"platform" yaml:"platform"`
}

// DefaultEndpoints returns the endpoints of a default local server.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Server:   DefaultServer,
		Entry:    DefaultEntry,
		Platform: DefaultPlatform,
	}
}

// BundleURL returns the address of the unminified JavaScript bundle of app.
func (e Endpoints) BundleURL(app string) (string, error) {
	return e.build(".bundle", app)
}

// MapURL returns the address of the source map matching [Endpoints.BundleURL].
func (e Endpoints) MapURL(app string) (string, error) {
	return e.build(".map", app)
}

// Query returns the query parameters shared by both artifact requests.
func (e Endpoints) Query(app string) url.Values {
	q := url.Values{}
	q.Set("platform", e.platform())
	q.Set("dev", "true")
	q.Set("lazy", "true")
	q.Set("minify", "false")
	q.Set("inlineSourceMap", "false")
	q.Set("modulesOnly", "false")
	q.Set("runModule", "true")
	q.Set("app", app)

	return q
}

func (e Endpoints) build(suffix, app string) (string, error) {
	server := e.Server
	if server == "" {
		server = DefaultServer
	}

	base, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("%w: server %q: %w", ErrEndpoint, server, err)
	}

	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: server %q: missing scheme or host", ErrEndpoint, server)
	}

	entry := strings.Trim(e.Entry, "/")
	if entry == "" {
		entry = DefaultEntry
	}

	u := base.JoinPath(entry + suffix)
	u.RawQuery = e.Query(app).Encode()

	return u.String(), nil
}

func (e Endpoints) platform() string {
	if e.Platform == "" {
		return DefaultPlatform
	}

	return e.Platform
}
