package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// configHeader opens every file written by WriteConfig.
const configHeader = "# jdg project settings, read from " + DefaultConfigFile + ".yaml in the working directory.\n" +
	"# Any key can be overridden with a " + EnvPrefix + "_ environment variable, e.g. " + EnvPrefix + "_DIAGRAM_VERTICAL=true.\n"

// WriteConfig writes cfg as a project file that Load reads back, creating the
// parent directory when needed. It backs `jdg init` and `jdg config edit`.
func WriteConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode jdg config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return fmt.Errorf("write jdg config %s: %w", path, err)
	}
	return nil
}
