package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up from the project directory upwards.
const FileName = ".bundedupe.yaml"

// Config represents the configuration for bun-dedupe
type Config struct {
	// Lockfile path, relative to the project directory
	Lockfile string `yaml:"lockfile"`

	// Check only reports duplicates and never writes the lockfile
	Check bool `yaml:"check"`

	// Output format: text, json, sarif
	Format string `yaml:"format"`

	// CIVariables are environment variables that turn on check mode when set
	CIVariables []string `yaml:"ciVariables"`

	// EnvFile is an optional dotenv file consulted for the CI variables
	EnvFile string `yaml:"envFile"`

	// Packages that are never hoisted
	IgnorePackages []string `yaml:"ignorePackages"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Lockfile:       "bun.lock",
		Format:         "text",
		CIVariables:    []string{"CI"},
		IgnorePackages: []string{},
	}
}

// LoadConfig loads the configuration from the specified file path
// If no path is provided, it looks for .bundedupe.yaml in the current directory
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config path provided, look in current directory
	if configPath == "" {
		configPath = FileName
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, return default config
		return config, nil
	}

	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse the YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, config.Validate()
}

// FindAndLoadConfig searches for a config file in the project directory and its parents
func FindAndLoadConfig(projectPath string) (*Config, error) {
	config := DefaultConfig()

	// Start from the project directory and work up to the root
	currentDir, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving project directory: %w", err)
	}
	for {
		configPath := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			// Found a config file, load it
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
			}

			// Parse the YAML
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
			}

			return config, config.Validate()
		}

		// Move up to the parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached the root directory, no config file found
			break
		}
		currentDir = parentDir
	}

	// No config file found, return default config
	return config, nil
}

// Validate checks the values that have a fixed set of choices
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json", "sarif":
	default:
		return fmt.Errorf("unsupported output format %q (expected text, json or sarif)", c.Format)
	}
	if c.Lockfile == "" {
		return fmt.Errorf("lockfile path must not be empty")
	}
	return nil
}
