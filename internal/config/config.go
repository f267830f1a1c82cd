// Package config loads the development server configuration.
//
// Values are layered, later sources overriding earlier ones:
// built-in defaults, a devserver.toml / devserver.yaml file in the serving
// root, a .env file and the process environment, then command-line flags
// (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zilpatel/site-devserver/internal/nav"
)

// DefaultPort is the port the server listens on unless configured otherwise.
const DefaultPort = 8000

// FileNames are the config files looked up by Discover, in order.
var FileNames = []string{"devserver.toml", "devserver.yaml", "devserver.yml"}

// Config holds the server settings.
type Config struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
	// Root is the serving root.
	Root string `toml:"root" yaml:"root"`
	// ContainPaths rejects request paths that resolve outside Root.
	ContainPaths bool `toml:"contain_paths" yaml:"contain_paths"`
	// CleanURLs serves /page from /page.html when /page does not exist.
	CleanURLs bool `toml:"clean_urls" yaml:"clean_urls"`
	// InjectNav rewrites HTML pages with the shared navigation bar.
	InjectNav bool `toml:"inject_nav" yaml:"inject_nav"`
	AccessLog bool `toml:"access_log" yaml:"access_log"`

	Nav Nav `toml:"nav" yaml:"nav"`
}

// Nav configures the injected navigation bar.
type Nav struct {
	Links []nav.Link `toml:"links" yaml:"links"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		Root:         ".",
		ContainPaths: true,
		AccessLog:    true,
		Nav:          Nav{Links: append([]nav.Link(nil), nav.DefaultLinks...)},
	}
}

// Discover returns the first config file from FileNames present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Load reads path on top of c. The format is chosen by file extension.
// Keys missing from the file keep their current values.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvHost         = "SITE_HOST"
	EnvPort         = "SITE_PORT"
	EnvRoot         = "SITE_ROOT"
	EnvContainPaths = "SITE_CONTAIN_PATHS"
	EnvCleanURLs    = "SITE_CLEAN_URLS"
	EnvInjectNav    = "SITE_INJECT_NAV"
)

// ApplyEnv loads dir/.env when present (without overriding variables that
// are already set) and applies the SITE_* variables to c.
func (c *Config) ApplyEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if v, ok := os.LookupEnv(EnvHost); ok {
		c.Host = v
	}
	if v, ok := os.LookupEnv(EnvRoot); ok && v != "" {
		c.Root = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{EnvContainPaths, &c.ContainPaths},
		{EnvCleanURLs, &c.CleanURLs},
		{EnvInjectNav, &c.InjectNav},
	}
	for _, b := range bools {
		v, ok := os.LookupEnv(b.name)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", b.name, v, err)
		}
		*b.dst = parsed
	}
	return nil
}

// Validate checks the port and makes Root absolute. Root must be an
// existing directory.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}

	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", abs)
	}
	c.Root = abs
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the address to open in a browser.
func (c Config) URL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port)) + "/"
}
