// Package config holds sceneinfo settings: which libassimp to load, the
// import preset to apply and where to log.
package config

import (
	"fmt"
	"sort"

	"github.com/wippyai/assimp-go"
)

// Config holds all sceneinfo settings.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// LibraryConfig selects the native library.
type LibraryConfig struct {
	Path string `yaml:"path"` // empty: $ASSIMP_LIBRARY, then system names
}

// ImportConfig is an import preset.
type ImportConfig struct {
	Steps      []string       `yaml:"steps"`      // post-processing step or preset names
	Properties map[string]any `yaml:"properties"` // importer property name -> value
	Hint       string         `yaml:"hint"`       // format hint for stdin input
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Steps: []string{"Triangulate", "JoinIdenticalVertices", "SortByPType"},
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// PostProcess resolves the configured step names.
func (c *Config) PostProcess() (assimp.PostProcess, error) {
	return assimp.ParsePostProcess(c.Import.Steps...)
}

// Properties converts the configured importer properties, sorted by name.
func (c *Config) Properties() ([]assimp.Property, error) {
	names := make([]string, 0, len(c.Import.Properties))
	for name := range c.Import.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]assimp.Property, 0, len(names))
	for _, name := range names {
		p, err := assimp.PropertyFromValue(name, c.Import.Properties[name])
		if err != nil {
			return nil, fmt.Errorf("import property %s: %w", name, err)
		}
		props = append(props, p)
	}
	return props, nil
}
