package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultFile is the project-local configuration file consulted by every
// command.
const DefaultFile = "livetw.toml"

const (
	DefaultFlaskRoot       = "src"
	DefaultStaticFolder    = "static"
	DefaultTemplatesFolder = "templates"
	DefaultTemplatesGlob   = "**/*.html"
	DefaultBaseLayout      = "layout.html"
	DefaultLivetwFolder    = ".dev"

	DefaultLiveReloadFile = "live_reload.js"
	DefaultGlobalCSSFile  = "global.css"
	DefaultTailwindDev    = "tailwind_development.css"
	DefaultTailwindProd   = "tailwind_production.css"

	DefaultLiveReloadHost = "127.0.0.1"
	DefaultLiveReloadPort = 5678

	DefaultFlaskApp = "app"
)

// ErrNotFound reports that no configuration file exists where one was
// expected.
var ErrNotFound = errors.New("config file not found")

// Config describes the project layout and the dev server endpoints. Paths are
// stored relative to their parent folder; the Full* accessors join them from
// the project root.
type Config struct {
	FlaskRoot       string `toml:"flask_root"`
	StaticFolder    string `toml:"static_folder"`
	TemplatesFolder string `toml:"templates_folder"`
	TemplatesGlob   string `toml:"templates_glob"`
	BaseLayout      string `toml:"base_layout"`
	LivetwFolder    string `toml:"livetw_folder"`

	LiveReloadFile string `toml:"live_reload"`
	GlobalCSS      string `toml:"global_css"`
	TailwindDev    string `toml:"tailwind_dev"`
	TailwindProd   string `toml:"tailwind_prod"`

	LiveReloadHost string `toml:"live_reload_host"`
	LiveReloadPort int    `toml:"live_reload_port"`

	FlaskApp            string   `toml:"flask_app"`
	FlaskHost           string   `toml:"flask_host,omitempty"`
	FlaskPort           int      `toml:"flask_port,omitempty"`
	FlaskExcludePattern []string `toml:"flask_exclude_patterns,omitempty"`
}

// Default returns a configuration populated with the stock project layout.
func Default() *Config {
	return &Config{
		FlaskRoot:       DefaultFlaskRoot,
		StaticFolder:    DefaultStaticFolder,
		TemplatesFolder: DefaultTemplatesFolder,
		TemplatesGlob:   DefaultTemplatesGlob,
		BaseLayout:      DefaultBaseLayout,
		LivetwFolder:    DefaultLivetwFolder,
		LiveReloadFile:  DefaultLiveReloadFile,
		GlobalCSS:       DefaultGlobalCSSFile,
		TailwindDev:     DefaultTailwindDev,
		TailwindProd:    DefaultTailwindProd,
		LiveReloadHost:  DefaultLiveReloadHost,
		LiveReloadPort:  DefaultLiveReloadPort,
		FlaskApp:        DefaultFlaskApp,
	}
}

// Load reads the configuration at path. Missing fields fall back to their
// defaults; a missing file surfaces ErrNotFound so callers can suggest
// running init.
func Load(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
		}
		return nil, fmt.Errorf("read config %s: %w", file, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", file, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(file string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", file, err)
	}
	return nil
}

// Validate rejects values that cannot produce a runnable dev server.
func (c *Config) Validate() error {
	if c.FlaskRoot == "" {
		return errors.New("flask_root must not be empty")
	}
	if c.LiveReloadHost == "" {
		return errors.New("live_reload_host must not be empty")
	}
	if c.LiveReloadPort <= 0 || c.LiveReloadPort > 65535 {
		return fmt.Errorf("live_reload_port %d out of range", c.LiveReloadPort)
	}
	if c.FlaskPort < 0 || c.FlaskPort > 65535 {
		return fmt.Errorf("flask_port %d out of range", c.FlaskPort)
	}
	return nil
}

// Derived paths. Joins use forward slashes because the values end up in
// tailwind globs, generated templates and command lines, all of which expect
// slash-separated paths on every platform.

func (c *Config) FullStaticFolder() string {
	return path.Join(c.FlaskRoot, c.StaticFolder)
}

func (c *Config) FullTemplatesFolder() string {
	return path.Join(c.FlaskRoot, c.TemplatesFolder)
}

func (c *Config) FullTemplatesGlob() string {
	return path.Join(c.FullTemplatesFolder(), c.TemplatesGlob)
}

func (c *Config) FullBaseLayout() string {
	return path.Join(c.FullTemplatesFolder(), c.BaseLayout)
}

func (c *Config) FullLivetwFolder() string {
	return path.Join(c.FullStaticFolder(), c.LivetwFolder)
}

func (c *Config) FullLiveReloadFile() string {
	return path.Join(c.FullLivetwFolder(), c.LiveReloadFile)
}

func (c *Config) FullGlobalCSS() string {
	return path.Join(c.FullLivetwFolder(), c.GlobalCSS)
}

func (c *Config) FullTailwindDev() string {
	return path.Join(c.FullLivetwFolder(), c.TailwindDev)
}

func (c *Config) FullTailwindProd() string {
	return path.Join(c.FullStaticFolder(), c.TailwindProd)
}
