package app

import (
	"fmt"
	"os"
	"path/filepath"

	"scribe-go/internal/config"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SCRIBE_CONFIG_PATH: config file location (default: ~/.config/scribe.toml)
//   - SCRIBE_DIR: store directory (default: ./.scribe)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	storeDir, err := getStoreDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"store_dir":   storeDir,
		"log_dir":     filepath.Join(storeDir, "log"),
	}, nil
}

// LoadConfig reads the config file at the default (or overridden) path. A
// missing config file is not an error: the defaults rooted at the default
// store directory apply.
func LoadConfig() (*config.Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		storeDir, err := getStoreDir()
		if err != nil {
			return nil, err
		}
		return config.NewConfig(storeDir), nil
	}

	return config.ReadFromFile(configPath)
}

// getConfigPath returns the config file path, checking SCRIBE_CONFIG_PATH env var
// first, then falling back to the default ~/.config/scribe.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("SCRIBE_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "scribe.toml"), nil
}

// getStoreDir returns the store directory, checking SCRIBE_DIR env var first,
// then falling back to .scribe in the working directory.
func getStoreDir() (string, error) {
	if path := os.Getenv("SCRIBE_DIR"); path != "" {
		return path, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return filepath.Join(wd, ".scribe"), nil
}
