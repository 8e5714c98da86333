package device

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
)

// ErrNotFound is returned by [Locate] when no executable is found.
var ErrNotFound = errors.New("executable not found")

// SDKEnv lists the environment variables that may point at an Android SDK
// installation, in order of preference.
//
//nolint:gochecknoglobals
var SDKEnv = []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"}

// SearchPath returns $PATH prefixed with the platform-tools directory of
// every configured Android SDK that exists.
func SearchPath() string {
	var tools []string

	for _, env := range SDKEnv {
		if root := os.Getenv(env); root != "" {
			tools = append(tools, filepath.Join(root, "platform-tools"))
		}
	}

	return mung.Make(
		mung.WithSubjectItems(filepath.SplitList(os.Getenv("PATH"))...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(tools...),
		mung.WithFilter(isDir),
	).String()
}

// Locate resolves name to an executable path. Names containing a path
// separator are returned unchanged if they exist; bare names are searched in
// [SearchPath].
func Locate(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutable(name) {
			return name, nil
		}

		return "", &os.PathError{Op: "locate", Path: name, Err: ErrNotFound}
	}

	for _, dir := range filepath.SplitList(SearchPath()) {
		if dir == "" {
			continue
		}

		if exe := filepath.Join(dir, name); isExecutable(exe) {
			return exe, nil
		}
	}

	return "", &os.PathError{Op: "locate", Path: name, Err: ErrNotFound}
}

func isDir(p string) bool {
	info, err := os.Stat(p)

	return err == nil && info.IsDir()
}

func isExecutable(p string) bool {
	info, err := os.Stat(p)

	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}
