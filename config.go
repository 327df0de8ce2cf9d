package tagdb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the database file name used when none is configured
const DefaultFileName = "appDB.db"

// Config controls where the database lives and how it logs.
type Config struct {
	// Dir holds the database file. Defaults to $HOME/Documents when it
	// exists, otherwise the working directory.
	Dir string `yaml:"dir"`
	// File is the database file name inside Dir
	File string `yaml:"file"`
	// Path overrides Dir and File
	Path string `yaml:"path"`
	// BusyTimeout is how long a session waits on a locked database
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	// LogLevel is one of debug, info, warning, error or none
	LogLevel string `yaml:"log_level"`

	// LogOutput receives log lines, stderr when nil
	LogOutput io.Writer `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		File:        DefaultFileName,
		BusyTimeout: 5 * time.Second,
		LogLevel:    "info",
	}
}

// LoadConfig reads a YAML config file over the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("Unable to read config: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("Unable to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// DatabasePath resolves the database file location
func (c Config) DatabasePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}

	file := c.File
	if file == "" {
		file = DefaultFileName
	}

	dir := c.Dir
	if dir == "" {
		var err error
		dir, err = defaultDir()
		if err != nil {
			return "", err
		}
	}

	return filepath.Join(dir, file), nil
}

func defaultDir() (string, error) {
	if home, err := os.UserHomeDir(); err == nil {
		docs := filepath.Join(home, "Documents")
		if fi, err := os.Stat(docs); err == nil && fi.IsDir() {
			return docs, nil
		}
	}

	return os.Getwd()
}
