package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns ~/.swarm/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".swarm", "config.yaml")
}
