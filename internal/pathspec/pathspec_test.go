package pathspec

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePOSIX(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX host only")
	}
	for _, p := range []string{
		"build",
		"build/lib/libdisni.so",
		"../src/main/resources/lib",
		"/opt/jdk",
		"/",
	} {
		assert.Equal(t, p, Normalize(p), "Normalize(%q)", p)
	}
}

func TestNormalizeCollapsesSeparators(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b"), Normalize("a//b"))
	assert.Equal(t, filepath.Join("a", "b"), Normalize("a/b/"))
}

func TestNormalizeAtReroots(t *testing.T) {
	sep := string(filepath.Separator)
	root := sep + "mnt" + sep + "host"

	tests := []struct {
		in   string
		want string
	}{
		{"/opt/jdk", root + sep + filepath.Join("opt", "jdk")},
		{"/", root + sep},
		{"build/lib", filepath.Join("build", "lib")},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAt(root, tt.in), "NormalizeAt(%q)", tt.in)
		assert.Equal(t, tt.want, NormalizeAt(root+sep, tt.in), "NormalizeAt(%q) with trailing separator", tt.in)
	}
}

func TestHostRootIsAbsolute(t *testing.T) {
	assert.True(t, filepath.IsAbs(hostRoot), "hostRoot = %q", hostRoot)
	assert.Equal(t, hostRoot, Normalize("/"))
}
