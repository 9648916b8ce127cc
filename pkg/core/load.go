package core

import (
	"fmt"
	"os"

	manifest "github.com/joeydtaylor/steeze-relay/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads the manifest at path, overlays the environment once and
// validates. A missing file is allowed when the environment supplies the sinks.
func LoadConfig(path string) (manifest.Config, error) {
	var cfg manifest.Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return manifest.Config{}, fmt.Errorf("manifest %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return manifest.Config{}, err
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return cfg, nil
}
