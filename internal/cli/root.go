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

// Package cli provides the docling command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	docling "github.com/nicholasgasior/docling-go"
	"github.com/nicholasgasior/docling-go/internal/config"
)

// Version is set via ldflags during build.
var Version = "dev"

type rootFlags struct {
	configPath   string
	to           string
	compact      bool
	verbose      bool
	keepDataURIs bool
}

// NewRootCommand builds the docling command. Each call returns an
// independent command, so tests can run it repeatedly.
func NewRootCommand() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "docling [flags] [path]",
		Short: "Convert a document and print its structured representation",
		Long: `docling converts a document (PDF, DOCX, PPTX, XLSX, HTML, Markdown, CSV,
EPUB, RSS, notebooks, ZIP archives and more) and prints the converted
document as a single line of JSON.

Without a path it prints {} and exits successfully. Extra arguments are ignored.

Settings come from --config, else docling.yaml in the working directory or
~/.config/docling, then DOCLING_* variables. A looked-up docling.yaml cannot
change the output format, and a broken one is ignored with a warning.

Example:
  docling report.pdf                  # JSON on one line
  docling --to markdown report.docx   # Markdown export
  docling --to headings report.pdf    # outline with page and box`,
		Args:          cobra.ArbitraryArgs,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "config file (default: ./docling.yaml or ~/.config/docling/docling.yaml)")
	flags.StringVar(&f.to, "to", "", "output format: json, yaml, markdown, text, headings (default: json)")
	flags.BoolVar(&f.compact, "compact", false, "omit spaces after JSON separators")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log conversion details to stderr")
	flags.BoolVar(&f.keepDataURIs, "keep-data-uris", false, "keep embedded images as data URIs")

	return cmd
}

// loadConfig merges the settings with the flags. Only an explicit --config or
// an invalid flag fails the run; a broken docling.yaml or DOCLING_* variable
// falls back to the defaults with a warning.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err == nil {
		applyFlags(cmd, f, cfg)
		err = cfg.Validate()
	}
	if err == nil {
		return cfg, nil
	}
	if f.configPath != "" {
		return nil, err
	}

	fallback := config.Default()
	applyFlags(cmd, f, fallback)
	if ferr := fallback.Validate(); ferr != nil {
		return nil, ferr
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ignoring configuration: %v\n", err)
	return fallback, nil
}

func applyFlags(cmd *cobra.Command, f *rootFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("to") {
		cfg.Output.Format = strings.ToLower(f.to)
	}
	if flags.Changed("compact") {
		cfg.Output.Compact = f.compact
	}
	if flags.Changed("keep-data-uris") {
		cfg.Convert.KeepDataURIs = f.keepDataURIs
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func run(cmd *cobra.Command, args []string, f *rootFlags) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "{}")
		return err
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	conv := docling.New(append(cfg.ConverterOptions(), docling.WithLogger(logger))...)

	res, err := conv.Convert(args[0])
	if err != nil {
		return err
	}
	logger.Info("converted", "file", res.Input.Filename, "format", res.Input.Format, "elapsed", res.Timings.Total())

	return render(cmd.OutOrStdout(), res.Document, cfg.Output)
}
