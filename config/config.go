package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlServer holds HTTP server settings
type TomlServer struct {
	Port int `toml:"port,omitempty"`
}

// TomlUpdate holds update cycle settings
type TomlUpdate struct {
	Workers int `toml:"workers,omitempty"`
}

// TomlSelection holds next-item selection settings
type TomlSelection struct {
	Order     string  `toml:"order,omitempty"`     // "asc" (most novel first) or "desc"
	Threshold float64 `toml:"threshold,omitempty"` // quality cutoff for ascending order, 0 disables
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Database  string        `toml:"database,omitempty"`
	Server    TomlServer    `toml:"server"`
	Update    TomlUpdate    `toml:"update"`
	Selection TomlSelection `toml:"selection"`
}

// Default returns the configuration used when no file is present.
func Default() *TomlConfig {
	return &TomlConfig{
		Database: "news.db",
		Server:   TomlServer{Port: 3000},
		Update:   TomlUpdate{Workers: 4},
		Selection: TomlSelection{
			Order: "asc",
			// Quality is matched words / sum of weights, so scores land in
			// (0, 1]. Items at or above the cutoff are held back.
			Threshold: 0.75,
		},
	}
}

// LoadConfig reads the TOML configuration file, falling back to defaults for
// a missing file and for any omitted field.
func LoadConfig(path string) (*TomlConfig, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.Update.Workers < 1 {
		config.Update.Workers = 1
	}

	return config, nil
}
