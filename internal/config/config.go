package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved gdview configuration.
type Config struct {
	Host            string
	Token           string
	UsePush         bool
	FastPoll        time.Duration
	SlowPoll        time.Duration
	UpgradeCooldown time.Duration
	LogDir          string
}

const (
	defaultConfigPath = "~/.config/gdview/config.toml"
	defaultLogDir     = "~/.local/state/gdview/logs"
	defaultHost       = "127.0.0.1:8288"
	defaultFastPoll   = 500 * time.Millisecond
	defaultSlowPoll   = 5 * time.Second

	// program name glog uses for its per-severity symlinks
	logProgram = "gdview"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Host:     defaultHost,
		UsePush:  true,
		FastPoll: defaultFastPoll,
		SlowPoll: defaultSlowPoll,
		LogDir:   mustExpand(defaultLogDir),
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Host              string `toml:"host"`
		Token             string `toml:"token"`
		UsePush           *bool  `toml:"use_push"`
		FastPollMS        int64  `toml:"fast_poll_ms"`
		SlowPollMS        int64  `toml:"slow_poll_ms"`
		UpgradeCooldownMS int64  `toml:"upgrade_cooldown_ms"`
		LogDir            string `toml:"log_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if host := strings.TrimSpace(raw.Host); host != "" {
		cfg.Host = host
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if raw.UsePush != nil {
		cfg.UsePush = *raw.UsePush
	}
	if raw.FastPollMS > 0 {
		cfg.FastPoll = time.Duration(raw.FastPollMS) * time.Millisecond
	}
	if raw.SlowPollMS > 0 {
		cfg.SlowPoll = time.Duration(raw.SlowPollMS) * time.Millisecond
	}
	if raw.UpgradeCooldownMS < 0 {
		return Config{}, fmt.Errorf("parse config: upgrade_cooldown_ms must not be negative")
	}
	cfg.UpgradeCooldown = time.Duration(raw.UpgradeCooldownMS) * time.Millisecond
	if logDir := strings.TrimSpace(raw.LogDir); logDir != "" {
		cfg.LogDir = mustExpand(logDir)
	}

	return cfg, nil
}

// InfoLogPath returns glog's INFO symlink inside LogDir, which always points
// at the current session's log.
func (c Config) InfoLogPath() string {
	dir := strings.TrimSpace(c.LogDir)
	if dir == "" {
		dir = mustExpand(defaultLogDir)
	}
	return filepath.Join(dir, logProgram+".INFO")
}

// EnsureLogDir creates LogDir so glog can write into it.
func (c Config) EnsureLogDir() error {
	if strings.TrimSpace(c.LogDir) == "" {
		return fmt.Errorf("log dir is empty")
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
