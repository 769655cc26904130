package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/disni/libdisni-build/internal/fsops"
)

// Install prefix layout after a successful run:
//
//	<prefix>/
//	  .libdisni-build.json    # Record of the last run
//	  lib/
//	    libdisni.so
//	  include/
const recordFile = ".libdisni-build.json"

// Record describes the last successful build in a prefix. It is
// informational; nothing is skipped because a record exists.
type Record struct {
	RunID         string       `json:"run_id"`
	JDKHome       string       `json:"jdk_home"`
	ConfigureArgs []string     `json:"configure_args"`
	Artifact      fsops.Staged `json:"artifact"`
	BuildTime     time.Time    `json:"build_time"`
}

// LoadRecord reads the build record from prefix.
func LoadRecord(prefix string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(prefix, recordFile))
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func saveRecord(prefix string, r *Record) (string, error) {
	path := filepath.Join(prefix, recordFile)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &fsops.Error{Op: "write", Path: path, Err: err}
	}
	return path, nil
}
