// Package config loads the client settings from an optional TOML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL       = "PHOTOEDIT_API_URL"
	EnvStaticURL    = "PHOTOEDIT_STATIC_URL"
	EnvToken        = "PHOTOEDIT_TOKEN"
	EnvViewport     = "PHOTOEDIT_VIEWPORT"
	EnvTimeout      = "PHOTOEDIT_TIMEOUT"
	EnvRefreshLimit = "PHOTOEDIT_REFRESH_LIMIT"
)

const (
	DefaultAPIURL       = "http://localhost:8000/api"
	DefaultViewport     = "390x844"
	DefaultTimeout      = 5 * time.Second
	DefaultRefreshLimit = 20
)

// Config is the client configuration.
type Config struct {
	APIURL       string   `toml:"api_url"`
	StaticURL    string   `toml:"static_url"`
	Token        string   `toml:"token"`
	Viewport     string   `toml:"viewport"`
	Timeout      Duration `toml:"timeout"`
	RefreshLimit int      `toml:"refresh_limit"`
}

// Duration is a time.Duration that decodes from strings such as "5s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		Viewport:     DefaultViewport,
		Timeout:      Duration{DefaultTimeout},
		RefreshLimit: DefaultRefreshLimit,
	}
}

// Load builds the configuration. path names an optional TOML file; an empty
// path skips it. A .env file in the working directory is loaded if present and
// never overrides variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if cfg.StaticURL == "" {
		cfg.StaticURL = strings.TrimSuffix(strings.TrimRight(cfg.APIURL, "/"), "/api")
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup(EnvStaticURL); ok && v != "" {
		c.StaticURL = v
	}
	if v, ok := lookup(EnvToken); ok {
		c.Token = v
	}
	if v, ok := lookup(EnvViewport); ok && v != "" {
		c.Viewport = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = Duration{d}
	}
	if v, ok := lookup(EnvRefreshLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRefreshLimit, err)
		}
		c.RefreshLimit = n
	}
	return nil
}

// Validate checks the URLs, viewport, timeout and refresh limit.
func (c Config) Validate() error {
	for name, raw := range map[string]string{"api_url": c.APIURL, "static_url": c.StaticURL} {
		if raw == "" && name == "static_url" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%s: %q is not an http(s) URL", name, raw)
		}
	}
	if _, _, err := ParseViewport(c.Viewport); err != nil {
		return err
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RefreshLimit <= 0 {
		return fmt.Errorf("refresh_limit must be positive, got %d", c.RefreshLimit)
	}
	return nil
}

// ParseViewport parses "WxH" into positive pixel dimensions.
func ParseViewport(s string) (w, h float64, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("viewport %q: want WIDTHxHEIGHT", s)
	}
	w, err = strconv.ParseFloat(strings.TrimSpace(ws), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewport %q: %w", s, err)
	}
	h, err = strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewport %q: %w", s, err)
	}
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0, 0, fmt.Errorf("viewport %q: dimensions must be positive", s)
	}
	return w, h, nil
}
