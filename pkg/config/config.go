// Package config loads depgraph settings from a TOML file and the environment.
//
// # File
//
// The file lives at $XDG_CONFIG_HOME/depgraph/config.toml, falling back to
// ~/.config/depgraph/config.toml. A missing file is not an error: every setting
// has a default.
//
//	[workspace]
//	backend = "file"      # or "redis"
//	dir = "~/.local/share/depgraph/workspaces"
//	name = "default"
//
//	[redis]
//	addr = "localhost:6379"
//	password = ""
//	db = 0
//
//	[render]
//	rankdir = "TB"
//	cache = true
//	cache_ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// # Environment
//
// Environment variables override the file:
//
//	DEPGRAPH_WORKSPACE_BACKEND  workspace.backend
//	DEPGRAPH_WORKSPACE_DIR      workspace.dir
//	DEPGRAPH_WORKSPACE          workspace.name
//	DEPGRAPH_REDIS_ADDR         redis.addr
//	DEPGRAPH_REDIS_PASSWORD     redis.password
//	DEPGRAPH_SERVER_ADDR        server.addr
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/render/nodelink"
)

const appName = "depgraph"

// Workspace backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the complete set of settings.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Redis     RedisConfig     `toml:"redis"`
	Render    RenderConfig    `toml:"render"`
	Server    ServerConfig    `toml:"server"`
}

// WorkspaceConfig selects where the graph is kept between runs.
type WorkspaceConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Name    string `toml:"name"`
}

// RedisConfig is used when the workspace backend is redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RenderConfig controls image export.
type RenderConfig struct {
	RankDir  string   `toml:"rankdir"`
	Cache    bool     `toml:"cache"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// ServerConfig controls `depgraph serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "90m" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Backend: BackendFile,
			Dir:     defaultDataDir(),
			Name:    "default",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Render: RenderConfig{
			RankDir:  nodelink.DefaultRankDir,
			Cache:    true,
			CacheTTL: Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default], applies environment
// overrides and validates the result. A missing file yields the defaults.
// Unknown keys are rejected so that typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.Workspace.Dir = expandHome(cfg.Workspace.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	for env, dst := range map[string]*string{
		"DEPGRAPH_WORKSPACE_BACKEND": &c.Workspace.Backend,
		"DEPGRAPH_WORKSPACE_DIR":     &c.Workspace.Dir,
		"DEPGRAPH_WORKSPACE":         &c.Workspace.Name,
		"DEPGRAPH_REDIS_ADDR":        &c.Redis.Addr,
		"DEPGRAPH_REDIS_PASSWORD":    &c.Redis.Password,
		"DEPGRAPH_SERVER_ADDR":       &c.Server.Addr,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*dst = v
		}
	}
}

// Validate reports the first invalid setting as INVALID_CONFIG.
func (c *Config) Validate() error {
	switch c.Workspace.Backend {
	case BackendFile:
		if c.Workspace.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "workspace.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "workspace.backend must be %q or %q, got %q", BackendFile, BackendRedis, c.Workspace.Backend)
	}
	if err := errors.ValidateWorkspaceName(c.Workspace.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "workspace.name")
	}
	if c.Redis.DB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "redis.db must not be negative")
	}
	if !slices.Contains(nodelink.RankDirs, strings.ToUpper(c.Render.RankDir)) {
		return errors.New(errors.ErrCodeInvalidConfig, "render.rankdir must be one of %s, got %q", strings.Join(nodelink.RankDirs, ", "), c.Render.RankDir)
	}
	if c.Render.CacheTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.cache_ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// Encode returns the TOML form of c.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves c to path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func (c *Config) Write(path string, overwrite bool) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

// defaultDataDir follows the XDG base directory spec for user data.
func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "workspaces")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName, "workspaces")
	}
	return filepath.Join(".", "."+appName)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// CacheDir returns the render cache directory (~/.cache/depgraph).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
