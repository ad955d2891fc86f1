package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the project config file looked up by FindConfigFile.
const ConfigFileName = "pgtransfer.yaml"

// FindConfigFile tries to find the pgtransfer config file in the current directory
// or any parent directory, falling back to the global config if needed
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %v", err)
	}
	if path := findUpward(dir); path != "" {
		return path, nil
	}

	// Fall back to global config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %v", err)
	}

	globalConfig := GlobalConfigPath(homeDir)
	if _, err := os.Stat(globalConfig); err == nil {
		return globalConfig, nil
	}

	return "", fmt.Errorf("no config file found in project or ~/.pgtransfer/config.yaml")
}

// GlobalConfigPath returns the per-user config file under homeDir.
func GlobalConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ".pgtransfer", "config.yaml")
}

func findUpward(dir string) string {
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "" // Reached root directory
		}
		dir = parent
	}
}
