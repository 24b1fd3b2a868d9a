package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ProviderLocal = "local"
	ProviderApple = "apple"
)

type Config struct {
	Home            string `yaml:"-"`
	MemoryPath      string `yaml:"memory_path"`
	SourcesDBPath   string `yaml:"sources_db_path"`
	Provider        string `yaml:"provider"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	WatchMemoryFile bool   `yaml:"watch_memory_file"`
	NotesFolder     string `yaml:"notes_folder"`
}

func defaults(home string) *Config {
	return &Config{
		Home:            home,
		MemoryPath:      filepath.Join(home, "memory.json"),
		SourcesDBPath:   filepath.Join(home, "sources.db"),
		Provider:        ProviderLocal,
		LogLevel:        "info",
		LogFormat:       "text",
		WatchMemoryFile: false,
		NotesFolder:     "Member Berries",
	}
}

// Load builds the config from defaults rooted at ~/.member-berries (or
// $MEMBER_BERRIES_HOME), overlaid with config.yaml from that directory when
// one exists.
func Load() (*Config, error) {
	return LoadFrom(homeDir())
}

func LoadFrom(home string) (*Config, error) {
	cfg := defaults(home)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Provider {
	case ProviderLocal, ProviderApple:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", ProviderLocal, ProviderApple, cfg.Provider)
	}
	return nil
}

func homeDir() string {
	if env := os.Getenv("MEMBER_BERRIES_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".member-berries")
}

func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.Home, 0o700)
}
