// Package config reads and writes the global ~/.chatsim/config.toml.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	Engine         Engine `toml:"engine"`
}

// Engine tunes the simulation. Zero values fall back to the defaults.
type Engine struct {
	TypingIndicatorMS int    `toml:"typing_indicator_ms"`
	ReceiveDelayMS    int    `toml:"receive_delay_ms"`
	PreviewLength     int    `toml:"preview_length"`
	LocalSender       string `toml:"local_sender"`
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Engine: Engine{
			TypingIndicatorMS: 1500,
			ReceiveDelayMS:    800,
			PreviewLength:     40,
			LocalSender:       "You",
		},
	}
}

// TypingIndicator returns the typing indicator duration.
func (e Engine) TypingIndicator() time.Duration {
	return time.Duration(e.TypingIndicatorMS) * time.Millisecond
}

// ReceiveDelay returns the simulated arrival delay.
func (e Engine) ReceiveDelay() time.Duration {
	return time.Duration(e.ReceiveDelayMS) * time.Millisecond
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads path over the defaults. A missing file is not an
// error; a malformed one is.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	d := Defaults().Engine
	if cfg.Engine.TypingIndicatorMS <= 0 {
		cfg.Engine.TypingIndicatorMS = d.TypingIndicatorMS
	}
	if cfg.Engine.ReceiveDelayMS <= 0 {
		cfg.Engine.ReceiveDelayMS = d.ReceiveDelayMS
	}
	if cfg.Engine.PreviewLength <= 0 {
		cfg.Engine.PreviewLength = d.PreviewLength
	}
	if cfg.Engine.LocalSender == "" {
		cfg.Engine.LocalSender = d.LocalSender
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
