package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/rnprof/pkg"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files such
// as the one written by the init command.
//
// Keys are flag names. Nested mappings are flattened by joining keys with a
// hyphen, and underscores are accepted in place of hyphens:
//
//	log:
//	  level: debug
//	package: com.example.app
//	transform_cmd: react-native-profile-transformer
//
// applies --log-level=debug, --package=com.example.app and
// --transform-cmd=react-native-profile-transformer. Command-line flags
// override configuration values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, pkg.ErrConfig.Wrapf("parse configuration: %v", err)
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened configuration keys.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		name := normalizeKey(key)
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch value := value.(type) {
		case map[string]any:
			c.flatten(name, value)

		case []any:
			items := make([]string, len(value))
			for i, item := range value {
				items[i] = scalar(item)
			}

			c[name] = items

		default:
			c[name] = scalar(value)
		}
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", "-")
}

// scalar returns the form Kong expects for a configuration value. Kong
// decodes numbers from strings.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
