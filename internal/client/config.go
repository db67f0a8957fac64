package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultPollInterval = 3 * time.Second
	appDir              = "ai-chat"
)

// Config is the client settings file.
type Config struct {
	BaseURL      string        `toml:"base_url"`
	PollInterval time.Duration `toml:"poll_interval"`
	TokenPath    string        `toml:"token_path"`
}

// DefaultConfigPath is config.toml under the user config dir.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appDir)
}

// LoadConfig reads path and fills unset fields. A missing file yields the
// defaults. CHAT_API_URL overrides base_url.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}

	if env := strings.TrimSpace(os.Getenv("CHAT_API_URL")); env != "" {
		cfg.BaseURL = env
	}
	return fillDefaults(cfg)
}

func fillDefaults(cfg Config) (Config, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollInterval < 0 {
		return Config{}, fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = filepath.Join(configDir(), "token")
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func (cfg Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
