// Package config loads linklint settings from a TOML file and LINKLINT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// FileName is the project configuration file looked up in the working
// directory.
const FileName = ".linklint.toml"

type Config struct {
	// Checks names the checks to run, or "all".
	Checks []string `mapstructure:"checks"`

	Fix  bool `mapstructure:"fix"`
	Jobs int  `mapstructure:"jobs"`

	// MaxBytes skips larger files when scanning directories.
	MaxBytes int64 `mapstructure:"max_bytes"`

	// Format is the output format, "text" or "json".
	Format string `mapstructure:"format"`

	// Color is "auto", "always" or "never".
	Color string `mapstructure:"color"`

	Extensions []string `mapstructure:"extensions"`
	IgnoreDirs []string `mapstructure:"ignore_dirs"`
}

// configDir returns the user configuration directory for linklint.
func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "linklint")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "linklint")
	}
	return ""
}

// findFile returns the first configuration file that exists, or "".
func findFile() string {
	candidates := []string{FileName}
	if dir := configDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("checks", "all")
	v.SetDefault("fix", false)
	v.SetDefault("jobs", 0)
	v.SetDefault("max_bytes", 2*1024*1024)
	v.SetDefault("format", "text")
	v.SetDefault("color", "auto")
	v.SetDefault("extensions", []string{})
	v.SetDefault("ignore_dirs", []string{})

	v.SetEnvPrefix("LINKLINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findFile()
		if path == "" {
			return v, nil
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return v, nil
}

// stringToListHookFunc splits comma separated strings, as given in the
// environment, into string lists.
func stringToListHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf([]string{}) {
			return data, nil
		}
		var out []string
		for _, part := range strings.Split(data.(string), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// .linklint.toml in the working directory and then the user config
// directory are tried, and a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToListHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("format: unknown value %q", c.Format))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color: unknown value %q", c.Color))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs: must not be negative, got %d", c.Jobs))
	}
	if c.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("max_bytes: must not be negative, got %d", c.MaxBytes))
	}
	return errors.Join(errs...)
}
