package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/external-adapters/yaml"
	"github.com/ochairo/pkggate/internal/external-adapters/zlog"
)

// defaultConfigFile is read from the working directory when --config is not given
const defaultConfigFile = "pkggate.yaml"

var errRejected = errors.New("package rejected")

// rootOptions carries persistent flags and the state resolved before a subcommand runs
type rootOptions struct {
	configFile string
	verbose    bool
	json       bool
	noColor    bool

	lookupEnv func(string) (string, bool)

	cfg    *config.Config
	logger interfaces.Logger
}

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	opts := &rootOptions{lookupEnv: lookupEnv}

	rootCmd := &cobra.Command{
		Use:           "pkggate",
		Short:         "Security gate for external packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: heredoc.Doc(`
			pkggate admits third-party packages into internal storage.

			Each requested package is downloaded, scanned with Amazon CodeGuru
			Security and judged by a severity policy. Approved packages are
			published to CodeArtifact or committed to a GitHub repository;
			rejected packages produce a findings report. The requester is
			notified either way.

			Configuration is read from pkggate.yaml (or --config), then from
			the environment, then from command line flags.
		`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			cfg, err := loadConfig(opts.configFile, opts.lookupEnv)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = newLogger(cmd.ErrOrStderr(), cfg, opts)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a YAML config file (default ./"+defaultConfigFile+" when present)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.json, "json", false, "Write logs and results as JSON")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored log output")

	rootCmd.AddCommand(
		runCmd(opts),
		scanCmd(opts),
		validateCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig layers the config file and the environment over the defaults
func loadConfig(path string, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg := config.Default()
	if path != "" {
		parsed, err := yaml.NewConfigParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = parsed
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(out io.Writer, cfg *config.Config, opts *rootOptions) interfaces.Logger {
	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	return zlog.New(out, zlog.Options{
		Level:   level,
		JSON:    opts.json || cfg.Log.JSON,
		NoColor: opts.noColor,
	})
}
