package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a named collection of queries to run together, loaded from
// a YAML file by the packs command.
type Manifest struct {
	Name  string      `yaml:"name"`
	Packs []PackEntry `yaml:"packs"`
}

// PackEntry is one named query in a manifest. Language may be empty, in
// which case the per-file detection applies.
type PackEntry struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
	Query    string `yaml:"query"`
}

// errEmptyManifest indicates a manifest without pack entries.
var errEmptyManifest = errors.New("config: manifest has no packs")

// errUnnamedPack indicates a pack entry missing its name.
var errUnnamedPack = errors.New("config: every pack needs a name")

// errPackWithoutQuery indicates a pack entry missing its query text.
var errPackWithoutQuery = errors.New("config: every pack needs a query")

// LoadManifest reads and validates a query-pack manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest

	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(manifest.Packs) == 0 {
		return nil, errEmptyManifest
	}

	for i, pack := range manifest.Packs {
		if pack.Name == "" {
			return nil, fmt.Errorf("%w (entry %d)", errUnnamedPack, i)
		}

		if pack.Query == "" {
			return nil, fmt.Errorf("%w (entry %q)", errPackWithoutQuery, pack.Name)
		}
	}

	return &manifest, nil
}
