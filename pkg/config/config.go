// Package config loads asciifolio settings from a TOML or YAML file.
//
// Values absent from the file keep their defaults, so an empty file yields
// the portfolio configuration. The loaded [Config] is validated once and then
// treated as immutable: renderers and widgets receive copies of its parts.
package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/cache"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/filter"
)

// EnvConfig names the config file when no flag is given.
const EnvConfig = "ASCIIFOLIO_CONFIG"

// DefaultFile is looked up in the working directory.
const DefaultFile = "asciifolio.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Render  ascii.Config  `toml:"render" yaml:"render"`
	Targets []Target      `toml:"targets" yaml:"targets"`
	Filter  filter.Config `toml:"filter" yaml:"filter"`
	Server  Server        `toml:"server" yaml:"server"`
	Cache   Cache         `toml:"cache" yaml:"cache"`
}

// Target binds an image to a wrapper/container pair on the page.
type Target struct {
	ID         string  `toml:"id" yaml:"id"`
	Image      string  `toml:"image" yaml:"image"`
	Wrapper    string  `toml:"wrapper" yaml:"wrapper"`
	Container  string  `toml:"container" yaml:"container"`
	Cols       int     `toml:"cols" yaml:"cols"`
	MobileCols int     `toml:"mobile_cols" yaml:"mobile_cols"`
	ExtraScale float64 `toml:"extra_scale" yaml:"extra_scale"`
}

// Job converts the target to a render job without a bound Target.
func (t Target) Job() ascii.Job {
	return ascii.Job{
		ID:         t.ID,
		Image:      t.Image,
		Cols:       t.Cols,
		MobileCols: t.MobileCols,
		ExtraScale: t.ExtraScale,
	}
}

// Server configures the page server.
type Server struct {
	Addr   string `toml:"addr" yaml:"addr"`
	Page   string `toml:"page" yaml:"page"`
	Assets string `toml:"assets" yaml:"assets"`

	// Viewport is assumed for server-side renders.
	ViewportWidth  float64 `toml:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `toml:"viewport_height" yaml:"viewport_height"`
}

// Viewport returns the configured server-side viewport.
func (s Server) Viewport() ascii.Viewport {
	return ascii.Viewport{Width: s.ViewportWidth, Height: s.ViewportHeight}
}

// Cache selects where fetched image sources are kept.
type Cache struct {
	Backend  string        `toml:"backend" yaml:"backend"`
	Dir      string        `toml:"dir" yaml:"dir"`
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`

	// Prefix scopes every key, for sites sharing one redis instance.
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// DefaultTargets are the two art blocks of the portfolio page.
func DefaultTargets() []Target {
	return []Target{
		{ID: "tree", Image: "images/tree.png", Wrapper: "art-wrapper", Container: "container"},
		{ID: "mountain", Image: "images/mountain.png", Wrapper: "art-wrapper-2", Container: "container-2", Cols: 350, MobileCols: 300},
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render:  ascii.DefaultConfig(),
		Targets: DefaultTargets(),
		Filter:  filter.DefaultConfig(),
		Server: Server{
			Addr:           ":8080",
			Page:           "templates/index.html",
			Assets:         ".",
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     cache.TTLImage,
		},
	}
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	d := Default()
	c.Render = c.Render.WithDefaults()
	if len(c.Targets) == 0 {
		c.Targets = d.Targets
	}
	if c.Filter.Initial == "" {
		c.Filter.Initial = d.Filter.Initial
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.Page == "" {
		c.Server.Page = d.Server.Page
	}
	if c.Server.Assets == "" {
		c.Server.Assets = d.Server.Assets
	}
	if c.Server.ViewportWidth <= 0 {
		c.Server.ViewportWidth = d.Server.ViewportWidth
	}
	if c.Server.ViewportHeight <= 0 {
		c.Server.ViewportHeight = d.Server.ViewportHeight
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = d.Cache.TTL
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	for _, v := range []float64{c.Server.ViewportWidth, c.Server.ViewportHeight} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "server: viewport size must be a finite number, got %g", v)
		}
	}
	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.ID == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "targets[%d]: id is required", i)
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "targets[%d]: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if err := errors.ValidateImageSource(t.Image); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "target %s image", t.ID)
		}
		for _, id := range []string{t.Wrapper, t.Container} {
			if err := errors.ValidateElementID(id); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "target %s", t.ID)
			}
		}
		if err := t.Job().Validate(); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache: redis backend needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache: ttl cannot be negative")
	}
	return nil
}

// Load reads path, choosing the decoder by extension (.toml, .yaml, .yml).
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses data in the format named by ext.
func Decode(data []byte, ext string) (Config, error) {
	cfg := Default()
	cfg.Targets = nil

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml config")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve picks the config path: the explicit flag, then $ASCIIFOLIO_CONFIG,
// then ./asciifolio.toml if present. It returns "" when none applies.
func Resolve(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// CacheDir returns the file cache directory: Dir if set, else
// $XDG_CACHE_HOME/asciifolio, else ~/.cache/asciifolio.
func (c Cache) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "asciifolio"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "asciifolio"), nil
}

// Keyer returns the key scheme for image sources, scoped by Prefix if set.
func (c Cache) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Prefix)
}

// Open connects the configured backend.
func (c Cache) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.DialRedis(ctx, c.RedisURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "connect redis")
		}
		return rc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "locate cache dir")
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache")
		}
		return fc, nil
	}
}
