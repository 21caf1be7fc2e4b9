package main

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

func scanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <name> <url>",
		Short: "Scan one package and print the decision",
		Long: heredoc.Doc(`
			Fetch, verify and scan a single package, then print the decision
			and the findings that drove it. Nothing is published and nobody
			is notified.

			Exits 1 when the package would be rejected.
		`),
		Example: heredoc.Doc(`
			pkggate scan left-pad https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := entities.NewPackageRequest(args[0], args[1])
			if err != nil {
				return err
			}
			if err := opts.cfg.ValidateScan(); err != nil {
				return err
			}

			app, err := buildApplication(cmd.Context(), opts.cfg, opts.logger, false)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // Nothing is held open without dispatch

			result, err := app.gate.Inspect(cmd.Context(), request)
			if err != nil {
				return err
			}
			if err := writeScan(cmd.OutOrStdout(), request, result, opts.json); err != nil {
				return err
			}
			if !result.Decision.Admitted() {
				return errRejected
			}
			return nil
		},
	}
}
