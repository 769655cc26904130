// Package pathspec converts portable, slash-separated paths into native paths.
package pathspec

import (
	"path/filepath"
	"strings"
)

// hostRoot is where absolute paths are re-rooted: "/" on POSIX hosts,
// the current drive (e.g. `C:\`) on Windows.
var hostRoot = func() string {
	root, err := filepath.Abs(string(filepath.Separator))
	if err != nil {
		return string(filepath.Separator)
	}
	return root
}()

// Normalize converts a slash-separated path into a native path.
// A leading "/" marks the path absolute; it is re-rooted at the host filesystem root.
func Normalize(p string) string {
	return NormalizeAt(hostRoot, p)
}

// NormalizeAt is Normalize with an explicit root.
func NormalizeAt(root, p string) string {
	joined := filepath.Join(strings.Split(p, "/")...)
	if !strings.HasPrefix(p, "/") {
		return joined
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return root + joined
}
