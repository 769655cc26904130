// Package config resolves the build configuration once, before any stage runs.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/disni/libdisni-build/internal/pathspec"
)

// JavaHomeEnv names the environment variable holding the JDK location.
const JavaHomeEnv = "JAVA_HOME"

// Error reports a missing or malformed configuration input.
type Error struct {
	Input string
	Err   error
}

func (e *Error) Error() string { return "config: " + e.Input + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// ErrMissing is wrapped by Error when a required input is absent.
var ErrMissing = errors.New("required but not set")

// Options carries every ambient input Resolve may consult.
type Options struct {
	Args    []string // positional invocation arguments
	Environ []string // process environment, KEY=VALUE
	WorkDir string   // invocation directory
	EnvFile string   // optional dotenv file
	File    string   // optional YAML layout file
}

// Config is the resolved, read-only build configuration.
type Config struct {
	RunID              string
	JDKHome            string
	WorkDir            string
	BuildPrefix        string
	ExtraConfigureArgs string
	ConfigureArgs      []string // ExtraConfigureArgs split into words
	Environ            []string
	Layout             Layout
}

// Resolve builds a Config from opts.
func Resolve(opts Options) (*Config, error) {
	environ := opts.Environ
	if opts.EnvFile != "" {
		fileEnv, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, &Error{Input: opts.EnvFile, Err: err}
		}
		environ = fillEnv(environ, fileEnv)
	}

	jdkHome := lookupEnv(environ, JavaHomeEnv)
	if jdkHome == "" {
		return nil, &Error{Input: JavaHomeEnv, Err: ErrMissing}
	}

	if opts.WorkDir == "" {
		return nil, &Error{Input: "working directory", Err: ErrMissing}
	}
	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, &Error{Input: "working directory", Err: err}
	}

	var extra string
	switch len(opts.Args) {
	case 0:
	case 1:
		extra = opts.Args[0]
	default:
		return nil, &Error{
			Input: "arguments",
			Err:   fmt.Errorf("expected at most one configure flags argument, got %d; quote multiple flags as one argument", len(opts.Args)),
		}
	}
	words, err := SplitArgs(extra)
	if err != nil {
		return nil, err
	}

	layout := DefaultLayout()
	if opts.File != "" {
		override, err := LoadFile(opts.File)
		if err != nil {
			return nil, &Error{Input: opts.File, Err: err}
		}
		layout = layout.merge(override)
	}

	c := &Config{
		RunID:              uuid.NewString(),
		JDKHome:            jdkHome,
		WorkDir:            workDir,
		ExtraConfigureArgs: extra,
		ConfigureArgs:      words,
		Environ:            environ,
		Layout:             layout,
	}
	c.BuildPrefix = c.Path(layout.BuildDir)
	return c, nil
}

// SplitArgs splits a configure flags string into words using shell
// quoting rules.
func SplitArgs(s string) ([]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, &Error{Input: "configure flags", Err: err}
	}
	return words, nil
}

// Path resolves a slash-separated layout path against WorkDir.
func (c *Config) Path(spec string) string {
	p := pathspec.Normalize(spec)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// LibraryPath is the installed shared library.
func (c *Config) LibraryPath() string { return c.Path(c.Layout.Library) }

// ResourceDir is where the shared library is staged.
func (c *Config) ResourceDir() string { return c.Path(c.Layout.ResourceDir) }

func lookupEnv(environ []string, key string) string {
	var val string
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			val = v
		}
	}
	return val
}

// fillEnv returns base plus every entry of extra whose key base lacks.
func fillEnv(base []string, extra map[string]string) []string {
	missing := make(map[string]string, len(extra))
	for k, v := range extra {
		missing[k] = v
	}
	for _, kv := range base {
		if k, _, ok := strings.Cut(kv, "="); ok {
			delete(missing, k)
		}
	}
	return mergeEnv(base, missing)
}

// mergeEnv returns a copy of base with every key in overrides replaced or appended.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, len(base), len(base)+len(overrides))
	copy(out, base)
	idx := make(map[string]int, len(out))
	for i, kv := range out {
		if k, _, ok := strings.Cut(kv, "="); ok {
			idx[k] = i
		}
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			out[i] = k + "=" + overrides[k]
		} else {
			out = append(out, k+"="+overrides[k])
		}
	}
	return out
}
