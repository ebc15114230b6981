// Package config loads the server's configuration from environment
// variables, with an optional JSONC override file, into a single
// dependency-injected struct. There are no package-level mutable globals;
// callers construct a Config once at startup and thread it through.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
)

// Config is the fully resolved, typed configuration for one server
// instance.
type Config struct {
	AllowedCommands   []string
	RetentionSeconds  int
	DefaultEncoding   string
	OutputStoragePath string
	AllowedDirs       []string
	LogFilePath       string

	// ConfigFilePath is the resolved path this Config was (optionally)
	// overridden from, kept so the caller can set up a watcher on it.
	ConfigFilePath string
}

const (
	defaultRetentionSeconds = 3600
	defaultEncoding         = "utf-8"
)

// override mirrors the subset of Config a JSONC file may set. Pointers
// distinguish "absent" from "explicitly empty" so a partial override file
// only touches the fields it names.
type override struct {
	AllowedCommands   []string `json:"allowed_commands"`
	RetentionSeconds  *int     `json:"retention_seconds"`
	DefaultEncoding   *string  `json:"default_encoding"`
	OutputStoragePath *string  `json:"output_storage_path"`
	AllowedDirs       []string `json:"allowed_dirs"`
	LogFilePath       *string  `json:"log_file_path"`
}

// Load builds a Config from the process environment, then applies an
// optional JSONC override file named by OSCMDMCP_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		AllowedCommands:   parseList(os.Getenv("ALLOWED_COMMANDS")),
		RetentionSeconds:  parseIntDefault(os.Getenv("PROCESS_RETENTION_SECONDS"), defaultRetentionSeconds),
		DefaultEncoding:   firstNonEmpty(os.Getenv("DEFAULT_ENCODING"), defaultEncoding),
		OutputStoragePath: firstNonEmpty(os.Getenv("OUTPUT_STORAGE_PATH"), filepath.Join(os.TempDir(), "oscmd-mcp", "logs")),
		AllowedDirs:       parseList(os.Getenv("ALLOWED_DIRS")),
		LogFilePath:       os.Getenv("LOG_FILE_PATH"),
	}

	if path := os.Getenv("OSCMDMCP_CONFIG"); path != "" {
		if err := applyOverrideFile(cfg, path); err != nil {
			return nil, err
		}
		cfg.ConfigFilePath = path
	}

	return cfg, nil
}

func applyOverrideFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading override file %s: %w", path, err)
	}
	var ov override
	if err := json.Unmarshal(jsonc.ToJSON(raw), &ov); err != nil {
		return fmt.Errorf("config: parsing override file %s: %w", path, err)
	}
	applyOverride(cfg, ov)
	return nil
}

func applyOverride(cfg *Config, ov override) {
	if ov.AllowedCommands != nil {
		cfg.AllowedCommands = ov.AllowedCommands
	}
	if ov.RetentionSeconds != nil {
		cfg.RetentionSeconds = *ov.RetentionSeconds
	}
	if ov.DefaultEncoding != nil {
		cfg.DefaultEncoding = *ov.DefaultEncoding
	}
	if ov.OutputStoragePath != nil {
		cfg.OutputStoragePath = *ov.OutputStoragePath
	}
	if ov.AllowedDirs != nil {
		cfg.AllowedDirs = ov.AllowedDirs
	}
	if ov.LogFilePath != nil {
		cfg.LogFilePath = *ov.LogFilePath
	}
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Live is a narrow, hot-reloadable view over the two fields the Design Notes
// deem safe to change without a restart: retention and default encoding.
// Allow-lists are deliberately excluded so a running server's security
// boundary cannot be widened by an unattended file edit.
type Live struct {
	mu               sync.RWMutex
	retentionSeconds int
	defaultEncoding  string
}

// NewLive snapshots the hot-reloadable fields of cfg.
func NewLive(cfg *Config) *Live {
	return &Live{
		retentionSeconds: cfg.RetentionSeconds,
		defaultEncoding:  cfg.DefaultEncoding,
	}
}

func (l *Live) RetentionSeconds() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.retentionSeconds
}

func (l *Live) DefaultEncoding() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultEncoding
}

// Reload re-reads path and applies only RetentionSeconds/DefaultEncoding.
// Any other field present in the file is parsed but ignored, by design.
func (l *Live) Reload(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reloading %s: %w", path, err)
	}
	var ov override
	if err := json.Unmarshal(jsonc.ToJSON(raw), &ov); err != nil {
		return fmt.Errorf("config: reparsing %s: %w", path, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if ov.RetentionSeconds != nil {
		l.retentionSeconds = *ov.RetentionSeconds
	}
	if ov.DefaultEncoding != nil {
		l.defaultEncoding = *ov.DefaultEncoding
	}
	return nil
}
