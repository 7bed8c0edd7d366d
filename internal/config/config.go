// Package config loads the YAML configuration shared by the CLI and the
// HTTP server.
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/hindilts/core/cache"
	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

// Config is the full configuration file.
type Config struct {
	Lexicon LexiconConfig `yaml:"lexicon"`
	Cache   CacheConfig   `yaml:"cache"`
	Batch   BatchConfig   `yaml:"batch"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

// LexiconConfig selects the lexicon table. With neither Path nor DB set
// the embedded table is used.
type LexiconConfig struct {
	Path       string `yaml:"path"`
	DB         string `yaml:"db"`
	Name       string `yaml:"name"`
	Allophones string `yaml:"allophones"`
}

// CacheConfig sizes the transcription cache. TTL is a Go duration
// string ("10m"); zero keeps entries until they are evicted.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Options converts c to the cache package's configuration.
func (c CacheConfig) Options() cache.Config {
	return cache.Config{MaxSize: c.Size, TTL: c.TTL}
}

type BatchConfig struct {
	Workers int  `yaml:"workers"`
	Align   bool `yaml:"align"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Lexicon: LexiconConfig{Name: "hi"},
		Cache:   CacheConfig{Size: cache.DefaultConfig().MaxSize},
		Batch:   BatchConfig{Workers: 4},
		Log:     LogConfig{Level: "info", Format: "auto"},
		Server:  ServerConfig{Port: 8080},
	}
}

// readFile is swapped in tests.
var readFile = os.ReadFile

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := readFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.NewParse("config", path, 0, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return errors.NewValidation("batch.workers", "must be at least 1")
	}
	if c.Cache.Size < 0 {
		return errors.NewValidation("cache.size", "must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.NewValidation("cache.ttl", "must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewValidation("server.port", "must be between 0 and 65535")
	}
	if c.Lexicon.Path != "" && c.Lexicon.DB != "" {
		return errors.NewValidation("lexicon", "path and db are mutually exclusive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidation("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return errors.NewValidation("log.format", err.Error())
	}
	for _, o := range c.Server.AllowedOrigins {
		if strings.TrimSpace(o) == "" {
			return errors.NewValidation("server.allowed_origins", "must not contain empty entries")
		}
	}
	return nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
