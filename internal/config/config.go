// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package config loads docling settings from defaults, an optional YAML file
// and DOCLING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	docling "github.com/nicholasgasior/docling-go"
)

// EnvPrefix is the prefix of environment overrides, e.g. DOCLING_OUTPUT_FORMAT.
const EnvPrefix = "DOCLING"

// Config represents the docling configuration.
type Config struct {
	Output   OutputConfig  `mapstructure:"output" yaml:"output"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	Convert  ConvertConfig `mapstructure:"convert" yaml:"convert"`
	Archive  ArchiveConfig `mapstructure:"archive" yaml:"archive"`
	PDF      PDFConfig     `mapstructure:"pdf" yaml:"pdf"`
}

// OutputConfig selects how the converted document is printed.
type OutputConfig struct {
	// Format is one of json, yaml, markdown, text, headings.
	Format string `mapstructure:"format" yaml:"format"`
	// Compact drops the spaces after JSON separators.
	Compact bool `mapstructure:"compact" yaml:"compact"`
}

// ConvertConfig holds converter-wide settings.
type ConvertConfig struct {
	KeepDataURIs bool  `mapstructure:"keep_data_uris" yaml:"keep_data_uris"`
	MaxFileSize  int64 `mapstructure:"max_file_size" yaml:"max_file_size"`
}

// ArchiveConfig filters ZIP members with doublestar patterns.
type ArchiveConfig struct {
	Include []string `mapstructure:"include" yaml:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// PDFConfig tunes the PDF layout.
type PDFConfig struct {
	HeaderMargin float64 `mapstructure:"header_margin" yaml:"header_margin"`
	MaxPages     int     `mapstructure:"max_pages" yaml:"max_pages"`
}

var supportedFormats = []string{"json", "yaml", "markdown", "text", "headings"}

var supportedLevels = []string{"debug", "info", "warn", "error"}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Field + ": " + err.Message
	}
	return "config validation errors: " + strings.Join(msgs, "; ")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Output:   OutputConfig{Format: "json"},
		LogLevel: "warn",
		PDF:      PDFConfig{HeaderMargin: docling.DefaultPdfOptions().HeaderMargin},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.compact", d.Output.Compact)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("convert.keep_data_uris", d.Convert.KeepDataURIs)
	v.SetDefault("convert.max_file_size", d.Convert.MaxFileSize)
	v.SetDefault("archive.include", []string{})
	v.SetDefault("archive.exclude", []string{})
	v.SetDefault("pdf.header_margin", d.PDF.HeaderMargin)
	v.SetDefault("pdf.max_pages", d.PDF.MaxPages)
}

// Load reads the configuration. An explicit path must exist; otherwise
// docling.yaml is looked up in the working directory and ~/.config/docling,
// and a missing file leaves the defaults in place. A looked-up file cannot
// change output.format: only an explicit path or DOCLING_OUTPUT_FORMAT can.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docling")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docling"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if path == "" && v.InConfig("output.format") {
		if _, ok := os.LookupEnv(EnvPrefix + "_OUTPUT_FORMAT"); !ok {
			cfg.Output.Format = Default().Output.Format
		}
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if !slices.Contains(supportedFormats, c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: %s", c.Output.Format, strings.Join(supportedFormats, ", ")),
		})
	}
	if !slices.Contains(supportedLevels, c.LogLevel) {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unsupported level %q, must be one of: %s", c.LogLevel, strings.Join(supportedLevels, ", ")),
		})
	}
	if c.Convert.MaxFileSize < 0 {
		errs = append(errs, ValidationError{Field: "convert.max_file_size", Message: "must be non-negative"})
	}
	if c.PDF.HeaderMargin < 0 || c.PDF.HeaderMargin >= 0.5 {
		errs = append(errs, ValidationError{Field: "pdf.header_margin", Message: "must be in [0, 0.5)"})
	}
	if c.PDF.MaxPages < 0 {
		errs = append(errs, ValidationError{Field: "pdf.max_pages", Message: "must be non-negative"})
	}
	for _, p := range append(slices.Clone(c.Archive.Include), c.Archive.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, ValidationError{Field: "archive", Message: fmt.Sprintf("invalid pattern %q", p)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ConverterOptions translates the configuration into converter options.
func (c *Config) ConverterOptions() []docling.Option {
	return []docling.Option{
		docling.WithKeepDataURIs(c.Convert.KeepDataURIs),
		docling.WithMaxFileSize(c.Convert.MaxFileSize),
		docling.WithArchiveFilter(c.Archive.Include, c.Archive.Exclude),
		docling.WithPdfOptions(docling.PdfOptions{
			HeaderMargin: c.PDF.HeaderMargin,
			MaxPages:     c.PDF.MaxPages,
		}),
	}
}
