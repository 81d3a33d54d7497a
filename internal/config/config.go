package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "ECICRAWL_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config.yaml"

// Fetcher kinds.
const (
	FetcherChrome = "chrome"
	FetcherHTTP   = "http"
)

// Election pins run metadata instead of reading it from the first page.
type Election struct {
	Year  string `yaml:"year" json:"year"`
	Type  string `yaml:"type" json:"type"`
	State string `yaml:"state" json:"state"`
}

// LegacyHeading sets how many words the older heading layout wraps around
// the constituency name.
type LegacyHeading struct {
	PrefixTokens int `yaml:"prefix_tokens" json:"prefix_tokens"`
	SuffixTokens int `yaml:"suffix_tokens" json:"suffix_tokens"`
}

// Config holds all settings for a crawl.
type Config struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	PageSuffix string `yaml:"page_suffix" json:"page_suffix"`
	Start      int    `yaml:"start" json:"start"`

	Fetcher               string `yaml:"fetcher" json:"fetcher"`
	WaitSeconds           int    `yaml:"wait_seconds" json:"wait_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	UserAgent             string `yaml:"user_agent" json:"user_agent"`
	ShowBrowser           bool   `yaml:"show_browser" json:"show_browser"`

	StatesFile string `yaml:"states_file" json:"states_file"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`

	Election      Election      `yaml:"election" json:"election"`
	LegacyHeading LegacyHeading `yaml:"legacy_heading" json:"legacy_heading"`

	// Quiet disables the spinner and progress bar.
	Quiet bool `yaml:"quiet" json:"quiet"`
	Debug bool `yaml:"debug" json:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:               "https://results.eci.gov.in/ResultAcGenNov2025/ConstituencywiseS04",
		PageSuffix:            ".htm",
		Start:                 1,
		Fetcher:               FetcherChrome,
		WaitSeconds:           10,
		RequestTimeoutSeconds: 60,
		UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.5481.77 Safari/537.36",
		OutputDir:             "./results",
		LegacyHeading:         LegacyHeading{PrefixTokens: 1, SuffixTokens: 1},
	}
}

// WaitTimeout is the bounded wait for a page element.
func (c Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

// RequestTimeout bounds a whole page load.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	switch c.Fetcher {
	case FetcherChrome, FetcherHTTP:
	default:
		return fmt.Errorf("unknown fetcher %q (want %q or %q)", c.Fetcher, FetcherChrome, FetcherHTTP)
	}
	if c.WaitSeconds < 1 {
		return fmt.Errorf("wait_seconds must be at least 1, got %d", c.WaitSeconds)
	}
	return nil
}

// PathFromEnv returns the config path from EnvPath or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config at path and merges <name>.local.<ext> over it when
// present. Unset fields take their defaults, so zero values such as
// prefix_tokens: 0 cannot be expressed. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config

	if _, err := readFile(path, &cfg); err != nil {
		return Config{}, err
	}

	ext := filepath.Ext(path)
	localPath := strings.TrimSuffix(path, ext) + ".local" + ext
	var local Config
	localFound, err := readFile(localPath, &local)
	if err != nil {
		return Config{}, err
	}
	if localFound {
		if err := mergo.Merge(&cfg, local, mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("failed to merge %s: %w", localPath, err)
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, cfg.Validate()
}

func readFile(path string, out *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		err = json5.Unmarshal(data, out)
	default:
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return false, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return true, nil
}
