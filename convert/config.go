package convert

import (
	"path/filepath"
	"strings"

	"github.com/ardnew/rnprof/fetch"
	"github.com/ardnew/rnprof/pkg"
)

// Scratch file names of the downloaded artifacts.
const (
	BundleFile = "index.bundle.js"
	MapFile    = "index.map"
)

// OutputSuffix is appended to the profile base name to form the output file
// name.
const OutputSuffix = "-converted.json"

// Config holds the settings of one run.
type Config struct {
	Package   string
	App       string
	Output    string
	Scratch   string
	Endpoints fetch.Endpoints
}

// Validate reports the first missing or unusable setting as [pkg.ErrConfig].
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Package) == "":
		return pkg.ErrConfig.Wrapf(
			"Please provide an Android package name using the -p or --package option.")
	case strings.TrimSpace(c.App) == "":
		return pkg.ErrConfig.Wrapf(
			"Please provide an Android app name using the -a or --app option.")
	case strings.TrimSpace(c.Output) == "":
		return pkg.ErrConfig.Wrapf(
			"Please provide an output directory using the -o or --output option.")
	case strings.TrimSpace(c.Scratch) == "":
		return pkg.ErrConfig.Wrapf("scratch directory is not set")
	}

	if _, err := c.Endpoints.BundleURL(c.App); err != nil {
		return pkg.ErrConfig.Wrap(err)
	}

	return nil
}

// Artifacts are the local files a transformation reads.
type Artifacts struct {
	Bundle    string
	SourceMap string
	Profile   string
}

// ScratchArtifacts returns the artifact paths of profileName under dir.
func ScratchArtifacts(dir, profileName string) Artifacts {
	return Artifacts{
		Bundle:    filepath.Join(dir, BundleFile),
		SourceMap: filepath.Join(dir, MapFile),
		Profile:   filepath.Join(dir, profileName),
	}
}

// OutputPath returns the file the trace converted from a profile named
// fileName is written to. Only the final extension is removed, so
// "a.b.cpuprofile" yields "a.b-converted.json" rather than "a-converted.json".
func OutputPath(dir, fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	return filepath.Join(dir, base+OutputSuffix)
}
