// Package config owns the on-disk YAML configuration. A default config is
// embedded in the binary and materialized on first use.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

//go:embed config.default.yml
var defaultConfig []byte

const (
	appDirName     = "prefixload"
	configFileName = "config.yml"

	// DefaultPartSize matches the S3 multipart default of 5 MiB.
	DefaultPartSize = 5 * humanize.MiByte
)

var (
	ErrRuleExists   = errors.New("rule with this prefix already exists")
	ErrRuleNotFound = errors.New("no rule with this prefix")
)

// Rule maps a filename prefix to a remote directory. Order in the config
// file is significant: the first matching rule wins.
type Rule struct {
	Prefix    string `yaml:"prefix_file"`
	RemoteDir string `yaml:"cloud_dir"`
}

type Config struct {
	Endpoint           string `yaml:"endpoint"`
	Bucket             string `yaml:"bucket"`
	Region             string `yaml:"region"`
	ForcePathStyle     bool   `yaml:"force_path_style"`
	PartSize           int64  `yaml:"part_size"`
	LocalDirectoryPath string `yaml:"local_directory_path"`
	Rules              []Rule `yaml:"directory_struct"`
}

// Path returns the platform-native config file location, creating the parent
// directory if needed (~/.config/prefixload/config.yml on Linux).
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	return filepath.Join(dir, configFileName), nil
}

func ensureExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, defaultConfig, 0o644)
}

// Load reads the config from the standard path, writing the embedded default
// first if no config exists yet.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at an explicit path, materializing the default
// if the file is missing.
func LoadFrom(path string) (*Config, error) {
	if err := ensureExists(path); err != nil {
		return nil, fmt.Errorf("config init '%s': %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config read '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse '%s': %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the fields the sync run depends on. It runs before any
// file or network I/O.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	if c.PartSize <= 0 {
		return fmt.Errorf("config: part_size must be greater than zero, got %d", c.PartSize)
	}
	if c.LocalDirectoryPath == "" {
		return errors.New("config: local_directory_path is required")
	}
	return nil
}

// Save writes the config to the standard path, keeping a .bak of the
// previous version.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := backup(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config marshal: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func backup(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config backup: %w", err)
	}
	return os.WriteFile(path+".bak", data, 0o644)
}

// AddRule appends a prefix mapping. Duplicate prefixes are rejected because
// the second rule could never match.
func (c *Config) AddRule(prefix, remoteDir string) error {
	for _, r := range c.Rules {
		if r.Prefix == prefix {
			return fmt.Errorf("%w: %s", ErrRuleExists, prefix)
		}
	}
	c.Rules = append(c.Rules, Rule{Prefix: prefix, RemoteDir: remoteDir})
	return nil
}

// RemoveRule deletes the mapping with the given prefix.
func (c *Config) RemoveRule(prefix string) error {
	for i, r := range c.Rules {
		if r.Prefix == prefix {
			c.Rules = append(c.Rules[:i], c.Rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, prefix)
}
