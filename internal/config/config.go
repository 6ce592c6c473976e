package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gompdf/pageflow/internal/page"
)

const (
	configDirName  = ".pageflow"
	configFileName = "config.json"

	defaultDebounceMS = 16
	defaultListenAddr = ":3001"
)

var ErrNotConfigured = errors.New("pageflow is not configured")

// Config stores user-defined pageflow settings.
type Config struct {
	Page        page.Config `json:"page"`
	SplitBlocks bool        `json:"split_blocks"`
	DebounceMS  int         `json:"debounce_ms"`
	Stylesheet  string      `json:"stylesheet,omitempty"`
	StoreDir    string      `json:"store_dir"`
	ListenAddr  string      `json:"listen_addr"`
}

// Default returns the A4 configuration with block splitting enabled.
func Default() Config {
	return Config{
		Page:        page.DefaultConfig(),
		SplitBlocks: true,
		DebounceMS:  defaultDebounceMS,
		StoreDir:    filepath.Join(configDirName, "documents"),
		ListenAddr:  defaultListenAddr,
	}
}

// Debounce returns the layout debounce window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Validate rejects settings the engine cannot work with.
func (c Config) Validate() error {
	if err := c.Page.Validate(); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms %d must not be negative", c.DebounceMS)
	}
	return nil
}

// ConfigPath returns the default configuration file path.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load reads and validates the configuration at path, or at ConfigPath when
// path is empty. Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	path, err := resolve(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotConfigured
		}
		return Config{}, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StoreDir, err = expandHome(strings.TrimSpace(cfg.StoreDir)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes configuration to path, or to ConfigPath when path is empty.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	path, err := resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(path, data, 0o600)
}

func resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ConfigPath()
	}
	return expandHome(path)
}

func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}
