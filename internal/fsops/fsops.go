// Package fsops provisions directories and stages build artifacts.
package fsops

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Error reports a failed filesystem operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// EnsureDir creates path and any missing parents.
// An existing directory is not an error; an existing non-directory is.
func EnsureDir(logger *slog.Logger, path string) error {
	logger.Info("mkdir -p " + path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &Error{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// Staged describes a file copied by CopyFile.
type Staged struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// CopyFile copies src into dstDir under its base name, overwriting any
// existing file. Permission bits are copied from src. If the destination
// already is src, nothing is written.
func CopyFile(logger *slog.Logger, src, dstDir string) (*Staged, error) {
	logger.Info("cp " + src + " " + dstDir)

	in, err := os.Open(src)
	if err != nil {
		return nil, &Error{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, &Error{Op: "stat", Path: src, Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Op: "copy", Path: src, Err: errors.New("is a directory")}
	}
	if err := checkWritable(dstDir); err != nil {
		return nil, &Error{Op: "access", Path: dstDir, Err: err}
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		// Opening dst with O_TRUNC would empty src.
		logger.Info("already in place", "path", dst)
		return hashFile(in, src, dst)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return nil, &Error{Op: "create", Path: dst, Err: err}
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, &Error{Op: "copy", Path: dst, Err: err}
	}
	// O_CREATE only applies the mode to new files.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return nil, &Error{Op: "chmod", Path: dst, Err: err}
	}

	return &Staged{
		Source: src,
		Path:   dst,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func hashFile(f *os.File, src, path string) (*Staged, error) {
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, &Error{Op: "read", Path: src, Err: err}
	}
	return &Staged{
		Source: src,
		Path:   path,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
