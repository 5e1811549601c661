// Package config provides configuration loading for the function runtime
// and the run command.
//
// Configuration is a single YAML file. Unknown keys are rejected so typos
// surface instead of silently falling back to defaults. Command-line flags
// override file values.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/tree"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "FNABI_CONFIG"

// Config configures how functions are loaded and run.
type Config struct {
	// Entrypoint is the exported function called per invocation.
	// Default: _start
	Entrypoint string `yaml:"entrypoint"`

	// MemoryLimitPages caps guest memory in 64KB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`

	// Timeout bounds one invocation. The guest is aborted when it expires.
	// 0 disables the limit. Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// InputFormat is the encoding of input payloads: json or msgpack.
	InputFormat string `yaml:"input_format"`

	// OutputFormat is the encoding of output payloads: json or msgpack.
	OutputFormat string `yaml:"output_format"`

	// LogCapacity bounds retained guest log bytes per invocation.
	// 0 also means the default. Default: 1000
	LogCapacity int `yaml:"log_capacity"`

	// LogLevel is the host log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// DisableWASI skips WASI preview1. Only modules without WASI imports load.
	DisableWASI bool `yaml:"disable_wasi"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Entrypoint:   "_start",
		Timeout:      5 * time.Second,
		InputFormat:  string(tree.FormatJSON),
		OutputFormat: string(tree.FormatJSON),
		LogCapacity:  1000,
		LogLevel:     "info",
	}
}

// Load reads the file at path over the defaults. An empty path falls back
// to $FNABI_CONFIG; if that is unset too, the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read "+path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Config("parse", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Entrypoint == "" {
		errs = append(errs, fmt.Errorf("entrypoint is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative: %s", c.Timeout))
	}
	if c.LogCapacity < 0 {
		errs = append(errs, fmt.Errorf("log_capacity must not be negative: %d", c.LogCapacity))
	}
	if _, err := tree.ParseFormat(c.InputFormat); err != nil {
		errs = append(errs, fmt.Errorf("input_format: %w", err))
	}
	if _, err := tree.ParseFormat(c.OutputFormat); err != nil {
		errs = append(errs, fmt.Errorf("output_format: %w", err))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if len(errs) > 0 {
		return errors.Config("validate", stderrors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level, or info if it does not parse.
func (c *Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Formats returns the parsed input and output formats.
func (c *Config) Formats() (in, out tree.Format, err error) {
	if in, err = tree.ParseFormat(c.InputFormat); err != nil {
		return "", "", err
	}
	if out, err = tree.ParseFormat(c.OutputFormat); err != nil {
		return "", "", err
	}
	return in, out, nil
}
