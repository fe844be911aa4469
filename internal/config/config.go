// Package config holds the settings consumed by repository setup: where clones
// and timing data live, and how ssh host key prompts are treated.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NicabarNimble/go-buildrepo/internal/errors"
)

const (
	defaultBaseDirName    = ".buildrepo"
	defaultPromptTimeout  = "40s"
	defaultCommandTimeout = "10m"

	// EnvPrefix prefixes every environment override, e.g. BUILDREPO_REPO_DIRECTORY.
	EnvPrefix = "BUILDREPO_"
)

// Config is the explicit configuration passed to the setup controller and the
// remote command driver.
type Config struct {
	BaseDirectory            string `json:"base_directory" yaml:"base_directory"`
	RepoDirectory            string `json:"repo_directory,omitempty" yaml:"repo_directory,omitempty"`
	TimingsDirectory         string `json:"timings_directory,omitempty" yaml:"timings_directory,omitempty"`
	GitStrictHostKeyChecking bool   `json:"git_strict_host_key_checking" yaml:"git_strict_host_key_checking"`
	GitShallowClone          bool   `json:"git_shallow_clone,omitempty" yaml:"git_shallow_clone,omitempty"`
	GitPromptTimeout         string `json:"git_prompt_timeout,omitempty" yaml:"git_prompt_timeout,omitempty"`
	GitCommandTimeout        string `json:"git_command_timeout,omitempty" yaml:"git_command_timeout,omitempty"`
}

// DefaultConfig provides default configuration values
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	cfg := &Config{
		BaseDirectory:     filepath.Join(home, defaultBaseDirName),
		GitPromptTimeout:  defaultPromptTimeout,
		GitCommandTimeout: defaultCommandTimeout,
	}
	cfg.MergeDefaults()
	return cfg
}

// Load reads the optional .env file, the config file at path and environment
// overrides, in that order, and validates the result.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.New(errors.OpConfig, fmt.Errorf("failed to load env file %s: %w", envFile, err))
		}
	}

	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.MergeDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.OpConfig, err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from a YAML or JSON file. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.MergeDefaults()
	return cfg, nil
}

// readConfig parses path without filling defaults, so that environment
// overrides of base_directory still move the derived directories.
func readConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.New(errors.OpConfig, fmt.Errorf("failed to read config file: %w", err))
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.OpConfig, fmt.Errorf("failed to parse config file: %w", err))
	}
	return cfg, nil
}

// SaveConfig saves configuration to a file, choosing the format from its extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return errors.New(errors.OpConfig, fmt.Errorf("failed to marshal config: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(errors.OpConfig, fmt.Errorf("failed to create config directory: %w", err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.OpConfig, fmt.Errorf("failed to write config file: %w", err))
	}

	return nil
}

// MergeDefaults fills unset fields. Repo and timing directories hang off the
// base directory unless configured explicitly.
func (c *Config) MergeDefaults() {
	if c.BaseDirectory == "" {
		c.BaseDirectory = DefaultConfig().BaseDirectory
	}
	if c.RepoDirectory == "" {
		c.RepoDirectory = filepath.Join(c.BaseDirectory, "repos")
	}
	if c.TimingsDirectory == "" {
		c.TimingsDirectory = filepath.Join(c.BaseDirectory, "timings")
	}
	if c.GitPromptTimeout == "" {
		c.GitPromptTimeout = defaultPromptTimeout
	}
	if c.GitCommandTimeout == "" {
		c.GitCommandTimeout = defaultCommandTimeout
	}
}

// ApplyEnv overrides fields from BUILDREPO_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BASE_DIRECTORY":      &c.BaseDirectory,
		"REPO_DIRECTORY":      &c.RepoDirectory,
		"TIMINGS_DIRECTORY":   &c.TimingsDirectory,
		"GIT_PROMPT_TIMEOUT":  &c.GitPromptTimeout,
		"GIT_COMMAND_TIMEOUT": &c.GitCommandTimeout,
	}
	for key, field := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	bools := map[string]*bool{
		"GIT_STRICT_HOST_KEY_CHECKING": &c.GitStrictHostKeyChecking,
		"GIT_SHALLOW_CLONE":            &c.GitShallowClone,
	}
	for key, field := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New(errors.OpConfig, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		}
		*field = b
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RepoDirectory) == "" {
		return fmt.Errorf("repo_directory cannot be empty")
	}
	if strings.TrimSpace(c.TimingsDirectory) == "" {
		return fmt.Errorf("timings_directory cannot be empty")
	}
	prompt, err := time.ParseDuration(c.GitPromptTimeout)
	if err != nil {
		return fmt.Errorf("invalid git_prompt_timeout: %w", err)
	}
	if prompt <= 0 {
		return fmt.Errorf("git_prompt_timeout must be positive")
	}
	command, err := time.ParseDuration(c.GitCommandTimeout)
	if err != nil {
		return fmt.Errorf("invalid git_command_timeout: %w", err)
	}
	if command < 0 {
		return fmt.Errorf("git_command_timeout cannot be negative")
	}
	return nil
}

// StrictHostKeyChecking reports whether unknown ssh hosts must be rejected.
func (c *Config) StrictHostKeyChecking() bool {
	return c.GitStrictHostKeyChecking
}

// PromptTimeout is the silence window the remote driver waits for a prompt.
func (c *Config) PromptTimeout() time.Duration {
	d, err := time.ParseDuration(c.GitPromptTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultPromptTimeout)
	}
	return d
}

// CommandTimeout bounds a remote command's lifetime. Zero means no bound.
func (c *Config) CommandTimeout() time.Duration {
	d, err := time.ParseDuration(c.GitCommandTimeout)
	if err != nil || d < 0 {
		d, _ = time.ParseDuration(defaultCommandTimeout)
	}
	return d
}
