package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAPIBase is where a local Exohunt backend listens out of the box.
const DefaultAPIBase = "http://localhost:8000/api"

// Config holds all configurable Exohunt CLI settings.
type Config struct {
	APIBase     string `json:"api_base"`     // backend base URL, including /api
	WatchDir    string `json:"watch_dir"`    // acquisition drop folder for `upload --watch`
	DefaultPlot string `json:"default_plot"` // "unicode" | "none"
	Category    string `json:"category"`     // default community category filter
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		APIBase:     DefaultAPIBase,
		DefaultPlot: "unicode",
	}
}

// LoadGlobal reads ~/.config/exohunt/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "exohunt", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .exohuntconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".exohuntconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults. The EXOHUNT_API_BASE
// environment variable overrides every file-level api_base.
func Merge(global, project *Config) Config {
	result := Defaults()

	// Apply global values over defaults.
	if global != nil {
		if global.APIBase != "" {
			result.APIBase = global.APIBase
		}
		if global.WatchDir != "" {
			result.WatchDir = global.WatchDir
		}
		if global.DefaultPlot != "" {
			result.DefaultPlot = global.DefaultPlot
		}
		if global.Category != "" {
			result.Category = global.Category
		}
	}

	// Apply project values over global.
	if project != nil {
		if project.APIBase != "" {
			result.APIBase = project.APIBase
		}
		if project.WatchDir != "" {
			result.WatchDir = project.WatchDir
		}
		if project.DefaultPlot != "" {
			result.DefaultPlot = project.DefaultPlot
		}
		if project.Category != "" {
			result.Category = project.Category
		}
	}

	if env := strings.TrimSpace(os.Getenv("EXOHUNT_API_BASE")); env != "" {
		result.APIBase = env
	}
	result.APIBase = strings.TrimRight(result.APIBase, "/")

	return result
}

// Load merges global and project config files in one call.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Defaults(), err
	}
	project, err := LoadProject()
	if err != nil {
		return Defaults(), err
	}
	return Merge(global, project), nil
}

// SaveGlobal writes cfg to ~/.config/exohunt/config.json, creating the
// directory if needed.
func SaveGlobal(cfg Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "exohunt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0o644)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
