// Package cli contains the command line interface for rnprof.
//
// # Commands
//
//   - convert (default): list the profiles on the device, prompt for one,
//     pull it, download the bundle and source map from the development
//     server and write the converted trace to the output directory.
//   - list: print the profiles on the device as text, JSON or YAML.
//   - init: write the current flag values to the configuration file.
//
// # Configuration
//
// Flags may be set in a YAML file at the user configuration directory
// (for example ~/.config/rnprof/config.yaml). Keys are flag names; nested
// mappings are joined with a hyphen:
//
//	log:
//	  level: debug
//	package: com.example.app
//	output: ./traces
//
// Command-line flags override configuration values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// Logs are written to standard error. Standard output carries only command
// results.
//
// # Profiling Options
//
// Profiling rnprof itself is only available when built with the pprof tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Examples
//
//	# Select interactively and convert
//	rnprof -p com.example.app -a MyApp -o ./traces
//
//	# Convert the newest profile without prompting
//	rnprof convert -p com.example.app -a MyApp -o ./traces --latest
//
//	# List profiles recorded today as JSON
//	rnprof list -p com.example.app -F json --filter 'Date == "2024-05-01"'
package cli
