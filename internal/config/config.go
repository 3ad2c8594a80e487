// ABOUTME: Configuration loader for the intranet client
// ABOUTME: Layers environment, config.yaml, .env and defaults

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL      = "http://localhost:8000/api"
	DefaultStorage     = "file"
	DefaultHTTPTimeout = 30 * time.Second

	appName = "intranet"
)

// Config holds the resolved client settings
type Config struct {
	APIURL        string
	LoginURL      string
	LoginCheckURL string
	Storage       string        // file or sqlite
	HTTPTimeout   time.Duration // transport timeout for every API call
	LogLevel      string
	LogFormat     string
	ConfigDir     string
}

// fileConfig is the shape of config.yaml
type fileConfig struct {
	APIURL        string `yaml:"api_url"`
	LoginURL      string `yaml:"login_url"`
	LoginCheckURL string `yaml:"login_check_url"`
	Storage       string `yaml:"storage"`
	HTTPTimeout   string `yaml:"http_timeout"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

// env maps each environment key to its config.yaml value
func (fc fileConfig) env() map[string]string {
	return map[string]string{
		"INTRANET_API_URL":         fc.APIURL,
		"INTRANET_LOGIN_URL":       fc.LoginURL,
		"INTRANET_LOGIN_CHECK_URL": fc.LoginCheckURL,
		"INTRANET_STORAGE":         fc.Storage,
		"INTRANET_HTTP_TIMEOUT":    fc.HTTPTimeout,
		"LOG_LEVEL":                fc.LogLevel,
		"LOG_FORMAT":               fc.LogFormat,
	}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Load resolves the configuration for configDir, reading .env from the
// working directory. An empty configDir selects DefaultConfigDir.
func Load(configDir string) (*Config, error) {
	return LoadFrom(configDir, ".env")
}

// LoadFrom is Load with an explicit .env path
func LoadFrom(configDir, dotenvPath string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
	}

	fc, err := readFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return nil, err
	}

	l := layers{fc.env(), dotenv}

	cfg := &Config{
		APIURL:    strings.TrimRight(ensureScheme(l.get("INTRANET_API_URL", DefaultAPIURL)), "/"),
		Storage:   strings.ToLower(l.get("INTRANET_STORAGE", DefaultStorage)),
		LogLevel:  l.get("LOG_LEVEL", "info"),
		LogFormat: l.get("LOG_FORMAT", "text"),
		ConfigDir: configDir,
	}
	cfg.LoginURL = ensureScheme(l.get("INTRANET_LOGIN_URL", cfg.APIURL+"/login"))
	cfg.LoginCheckURL = ensureScheme(l.get("INTRANET_LOGIN_CHECK_URL", cfg.APIURL+"/login_check"))

	timeout := l.get("INTRANET_HTTP_TIMEOUT", "")
	cfg.HTTPTimeout = DefaultHTTPTimeout
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("INTRANET_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("INTRANET_API_URL is required")
	}
	if c.Storage != "file" && c.Storage != "sqlite" {
		return fmt.Errorf("INTRANET_STORAGE must be file or sqlite, got %q", c.Storage)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("INTRANET_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

// SetAPIURL overrides the API URL, re-deriving login URLs that were defaulted
func (c *Config) SetAPIURL(url string) {
	old := c.APIURL
	c.APIURL = strings.TrimRight(ensureScheme(url), "/")
	if c.LoginURL == old+"/login" {
		c.LoginURL = c.APIURL + "/login"
	}
	if c.LoginCheckURL == old+"/login_check" {
		c.LoginCheckURL = c.APIURL + "/login_check"
	}
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// layers resolves a key from the real environment first, then each layer in order
type layers []map[string]string

func (l layers) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	for _, m := range l {
		if value := m[key]; value != "" {
			return value
		}
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
