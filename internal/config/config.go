package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the application configuration, stored in
// ~/.config/worktime/config.json. The file supports full-line // comments.
// Work settings (limits, pay, notifications) live in the database instead,
// where the settings view edits them.
type Config struct {
	// Database is the SQLite file holding entries and settings.
	Database string `json:"database"`
	// Timezone is the IANA zone days and periods are computed in. Empty = local.
	Timezone string `json:"timezone"`
	// LogFile receives structured logs.
	LogFile string `json:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
}

const DefaultLogLevel = "info"

// Dir returns ~/.config/worktime (or the platform equivalent).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, "worktime"), nil
}

// DefaultPath returns the path of the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func defaultConfig(dir string) Config {
	return Config{
		Database: filepath.Join(dir, "worktime.db"),
		LogFile:  filepath.Join(dir, "worktime.log"),
		LogLevel: DefaultLogLevel,
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `// worktime configuration
//
// All settings are optional; empty values fall back to the defaults.
// Work time, overtime, pay and notifications are edited in the app's
// settings view and stored in the database.
{
  // SQLite database file. Empty = worktime.db next to this file.
  "database": "",

  // IANA timezone days and periods are computed in, e.g. "Europe/Berlin".
  // Empty = the system's local timezone.
  "timezone": "",

  // Structured log file. Empty = worktime.log next to this file.
  "log_file": "",

  // One of: debug, info, warn, error.
  "log_level": "info"
}
`

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at the default path.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, writing the annotated template there on
// first run. Empty fields are filled with defaults relative to path's directory.
func LoadFrom(path string) (Config, error) {
	dir := filepath.Dir(path)
	cfg := defaultConfig(dir)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return cfg, fmt.Errorf("create config file %s: %w", path, err)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var parsed Config
	if err := json.Unmarshal(stripLineComments(data), &parsed); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	if parsed.Database != "" {
		cfg.Database = parsed.Database
	}
	if parsed.LogFile != "" {
		cfg.LogFile = parsed.LogFile
	}
	if parsed.LogLevel != "" {
		cfg.LogLevel = parsed.LogLevel
	}
	cfg.Timezone = parsed.Timezone

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves Timezone, defaulting to time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(configTemplate), 0o644)
}
