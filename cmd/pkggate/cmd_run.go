package main

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/external-adapters/csvfile"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var (
		requests  string
		publisher string
		notifier  string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan every requested package and publish or reject it",
		Long: heredoc.Doc(`
			Read the request file (one "name,url" pair per line, no header) and
			run each package through fetch, scan, decide and dispatch.

			Package failures are reported in the summary and do not change the
			exit status. The command fails only when the request file cannot be
			read, the configuration is invalid or an adapter cannot be set up.
		`),
		Example: heredoc.Doc(`
			# Publish approved packages to CodeArtifact and notify over SNS
			pkggate run --requests external-package-request.csv

			# Commit approved packages to GitHub, four at a time
			pkggate run --publisher source-control --workers 4

			# Dry run notifications into the log
			pkggate run --notifier log --verbose
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			flags := cmd.Flags()
			if flags.Changed("requests") {
				cfg.Requests = requests
			}
			if flags.Changed("publisher") {
				cfg.Publisher = publisher
			}
			if flags.Changed("notifier") {
				cfg.Notifier.Kind = notifier
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			app, err := buildApplication(cmd.Context(), cfg, opts.logger, true)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // Best-effort close of notifier connections

			result, err := app.gate.Run(cmd.Context(), csvfile.NewRequestSource(cfg.Requests))
			if result != nil {
				if werr := writeBatch(cmd.OutOrStdout(), result, opts.json); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&requests, "requests", "", "Request file (default external-package-request.csv)")
	cmd.Flags().StringVar(&publisher, "publisher", "", "Publish target: "+config.PublisherRegistry+" or "+config.PublisherSourceControl)
	cmd.Flags().StringVar(&notifier, "notifier", "", "Notification channel: sns, redis or log")
	cmd.Flags().IntVar(&workers, "workers", 1, "Packages processed concurrently")
	return cmd
}
