// Package profile provides optional runtime profiling of rnprof itself.
//
// Profiling is compiled in only with the "pprof" build tag; otherwise every
// operation is a no-op:
//
//	go build -tags pprof .
//	rnprof --pprof-mode=cpu -p com.example.app -a main -o ./out
//
// Profiles are written by [github.com/pkg/profile] into the directory given by
// [WithPath] and can be inspected with "go tool pprof".
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
