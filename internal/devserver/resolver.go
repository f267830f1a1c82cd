package devserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDocument is served for requests that name a directory.
	DefaultDocument = "index.html"
	// FallbackDocument is served, from the serving root, when resolution fails.
	FallbackDocument = "404.html"
)

var (
	// ErrNotFound is returned when a request path does not name a servable file.
	ErrNotFound = errors.New("not found")
	// ErrOutsideRoot is returned when containment is enabled and a request
	// path resolves outside the serving root.
	ErrOutsideRoot = errors.New("outside serving root")
)

// Resolver maps request paths to files under a serving root.
type Resolver struct {
	// Root is the serving root. It should be absolute.
	Root string
	// ContainPaths rejects request paths that escape Root (for example via "..").
	// When false, escaping paths are resolved like any other path.
	ContainPaths bool
	// CleanURLs tries "<path>.html" for extension-less paths that do not exist.
	CleanURLs bool
}

// Resolve returns the filesystem path that should be served for reqPath.
//
// Every request goes through the same steps:
//   - join Root with reqPath ("/" resolves to Root itself)
//   - stat the result; a directory resolves to its index.html
//   - a trailing slash on a path naming a regular file is not found
//
// Any stat failure is reported as ErrNotFound.
func (r Resolver) Resolve(reqPath string) (string, error) {
	root := filepath.Clean(r.Root)
	target := filepath.Join(root, filepath.FromSlash(reqPath))

	if r.ContainPaths && !within(root, target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, reqPath)
	}

	info, err := os.Stat(target)
	if err != nil {
		if alt, ok := r.cleanURL(reqPath, target); ok {
			return alt, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, reqPath)
	}

	if info.IsDir() {
		index := filepath.Join(target, DefaultDocument)
		if !isRegular(index) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, reqPath)
		}
		return index, nil
	}

	if strings.HasSuffix(reqPath, "/") {
		// "/page.html/" asks for page.html/index.html
		return "", fmt.Errorf("%w: %s", ErrNotFound, reqPath)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, reqPath)
	}
	return target, nil
}

// cleanURL tries the ".html" counterpart of an extension-less request path.
func (r Resolver) cleanURL(reqPath, target string) (string, bool) {
	if !r.CleanURLs || strings.HasSuffix(reqPath, "/") || filepath.Ext(target) != "" {
		return "", false
	}
	alt := target + ".html"
	if !isRegular(alt) {
		return "", false
	}
	return alt, true
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
