package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout names the paths and commands the build touches. Paths are
// slash-separated and relative to the working directory unless they
// start with "/". Autoprepare is run as given, relative to the working
// directory.
type Layout struct {
	BuildDir    string   `yaml:"build_dir"`
	Autoprepare string   `yaml:"autoprepare"`
	Library     string   `yaml:"library"`
	ResourceDir string   `yaml:"resource_dir"`
	MakeArgs    []string `yaml:"make_args"`
}

// DefaultLayout is the libdisni source tree layout.
func DefaultLayout() Layout {
	return Layout{
		BuildDir:    "build",
		Autoprepare: "./autoprepare.sh",
		Library:     "build/lib/libdisni.so",
		ResourceDir: "../src/main/resources/lib",
	}
}

// LoadFile reads a YAML layout file. Unknown keys are rejected.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l Layout
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &l, nil
}

func (l Layout) merge(o *Layout) Layout {
	if o.BuildDir != "" {
		l.BuildDir = o.BuildDir
	}
	if o.Autoprepare != "" {
		l.Autoprepare = o.Autoprepare
	}
	if o.Library != "" {
		l.Library = o.Library
	}
	if o.ResourceDir != "" {
		l.ResourceDir = o.ResourceDir
	}
	if o.MakeArgs != nil {
		l.MakeArgs = o.MakeArgs
	}
	return l
}
