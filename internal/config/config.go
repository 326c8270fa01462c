// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gopkg.spork.dev/compiler.go/internal/exc"
)

// EnvConfigPath names the environment variable that points at a config file
// when no --config flag is given.
const EnvConfigPath = "SPORKC_CONFIG"

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension. Anything that is not
// YAML is read as TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Config holds the settings a config file may provide to sporkc. Zero values
// mean "not set" and leave the command line defaults in place.
type Config struct {
	Roots          []string `toml:"roots" yaml:"roots"`
	DumpTokens     bool     `toml:"dump_tokens" yaml:"dump_tokens"`
	DumpTree       bool     `toml:"dump_tree" yaml:"dump_tree"`
	TreeFormat     string   `toml:"tree_format" yaml:"tree_format"`
	LogLevel       string   `toml:"log_level" yaml:"log_level"`
	LogFile        string   `toml:"log_file" yaml:"log_file"`
	MaxConcurrency int      `toml:"max_concurrency" yaml:"max_concurrency"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
		}
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeConfigError, err)
	}
	cfg, err := Parse(content, DetectFormat(path))
	if err != nil {
		var e exc.Exception
		if errors.As(err, &e) {
			return nil, exc.New(exc.Location{URI: path}, e.Code(), e.Message())
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes content in the given format. Unknown keys are an error so that
// typos do not silently fall back to defaults.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := &Config{}
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return nil, exc.Wrap(exc.Location{}, exc.CodeConfigError, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("unknown config key %q", undecoded[0].String()))
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(strings.NewReader(string(content)))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, exc.Wrap(exc.Location{}, exc.CodeConfigError, err)
		}
	default:
		return nil, exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("unsupported config format %s", format))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (c *Config) Validate() error {
	switch c.TreeFormat {
	case "", "text", "json":
	default:
		return exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("tree_format must be text or json, not %q", c.TreeFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("log_level must be debug, info, warn or error, not %q", c.LogLevel))
	}
	if c.MaxConcurrency < 0 {
		return exc.New(exc.Location{}, exc.CodeConfigError, "max_concurrency cannot be negative")
	}
	return nil
}
