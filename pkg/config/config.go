// Package config loads the JSON configuration shared by the memsim commands.
//
// Example file:
//
//	{
//	    "page_dim": 16,
//	    "page_count": 2,
//	    "log_level": "DEBUG",
//	    "log_path": "./logs/memsim.log",
//	    "log_format": "text",
//	    "seed": 42,
//	    "processes_per_page": 0
//	}
//
// Zero values are replaced by defaults, so an empty object is a valid file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	memerr "memsim/pkg/error"
	"memsim/pkg/logging"
	"memsim/pkg/memory"
)

// Config is the on-disk configuration.
type Config struct {
	PageDim   int `json:"page_dim"`
	PageCount int `json:"page_count"`

	LogLevel  string `json:"log_level"`
	LogPath   string `json:"log_path"`
	LogFormat string `json:"log_format"`

	// Seed makes process generation reproducible. 0 means random.
	Seed uint64 `json:"seed"`

	// ProcessesPerPage fixes how many processes the demo loads per page.
	// 0 picks a random count in [1, capacity).
	ProcessesPerPage int `json:"processes_per_page"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		PageDim:   memory.DefaultGeometry.PageDim,
		PageCount: memory.DefaultGeometry.PageCount,
		LogLevel:  string(logging.LevelInfo),
		LogFormat: "text",
	}
}

// Load reads filePath, applies defaults and validates the result.
func Load(filePath string) (Config, error) {
	cfg := Config{}
	if err := decodeFile(filePath, &cfg); err != nil {
		return Config{}, memerr.Wrap(err, memerr.CodeInvalidConfig, "Load", "Config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(filePath string, v any) error {
	configFile, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer configFile.Close()

	decoder := json.NewDecoder(configFile)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filePath, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.PageDim == 0 {
		c.PageDim = def.PageDim
	}
	if c.PageCount == 0 {
		c.PageCount = def.PageCount
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
}

// Validate checks the geometry and logging settings.
func (c Config) Validate() error {
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return memerr.Newf(memerr.ErrInvalidConfig, "Validate", "Config", "%v", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return memerr.Newf(memerr.ErrInvalidConfig, "Validate", "Config",
			"log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.ProcessesPerPage < 0 || c.ProcessesPerPage > c.Geometry().Capacity() {
		return memerr.Newf(memerr.ErrInvalidConfig, "Validate", "Config",
			"processes_per_page must be within [0, %d], got %d", c.Geometry().Capacity(), c.ProcessesPerPage)
	}
	return nil
}

// Geometry returns the memory layout described by the config.
func (c Config) Geometry() memory.Geometry {
	return memory.Geometry{PageDim: c.PageDim, PageCount: c.PageCount}
}

// Logging returns the logger settings described by the config.
func (c Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.Config{
		Level:      level,
		OutputPath: c.LogPath,
		Format:     c.LogFormat,
	}
}
