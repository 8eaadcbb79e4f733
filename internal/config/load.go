package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames lists the recognized config file names in lookup order.
// A TOML file wins over a YAML file in the same directory.
var ConfigFileNames = []string{".quill.toml", ".quill.yaml", ".quill.yml"}

// FindConfigFile walks up from the given directory to find a quill config
// file. Returns the absolute path to the config file, or an empty string if
// not found. Stops at the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			return "", nil
		}
		dir = parent
	}
}

// LoadFromFile parses the config file at the given path. The format is
// chosen by extension: .yaml and .yml are YAML, anything else is TOML.
//
// For TOML files the returned metadata can be used to detect unknown keys
// via MetaData.Undecoded(). YAML files are decoded strictly instead, so an
// unknown key fails the load and the returned metadata is nil.
func LoadFromFile(path string) (*Config, *toml.MetaData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err := loadYAML(path)
		return cfg, nil, err
	default:
		var cfg Config
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return &cfg, &md, nil
	}
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, nil
}
