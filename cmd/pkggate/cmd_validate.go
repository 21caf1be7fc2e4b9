package main

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/external-adapters/csvfile"
)

var errInvalidRequests = errors.New("request file has malformed rows")

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [requests-file]",
		Short: "Check the configuration and the request file",
		Long: heredoc.Doc(`
			Validate the resolved configuration and parse the request file
			without contacting any service. Every malformed row is listed with
			its line number.
		`),
		Example: heredoc.Doc(`
			pkggate validate
			pkggate validate requests.csv --json
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.Requests
			if len(args) == 1 {
				path = args[0]
			}

			records, err := csvfile.NewRequestSource(path).Requests(cmd.Context())
			if err != nil {
				return err
			}

			report := validationReport{File: path, MaxDownload: opts.cfg.Fetch.MaxBytes.String()}
			if err := opts.cfg.Validate(); err != nil {
				report.ConfigError = err.Error()
			}
			for _, rec := range records {
				if rec.Err != nil {
					report.Malformed = append(report.Malformed, malformedRow{Line: rec.Line, Error: rec.Err.Error()})
					continue
				}
				report.Packages = append(report.Packages, requestView{Name: rec.Request.Name, URL: rec.Request.SourceURL})
			}

			if err := writeValidation(cmd.OutOrStdout(), report, opts.json); err != nil {
				return err
			}

			switch {
			case report.ConfigError != "":
				return fmt.Errorf("%w: configuration is invalid", entities.ErrConfig)
			case len(report.Malformed) > 0:
				return fmt.Errorf("%w: %d of %d", errInvalidRequests, len(report.Malformed), len(records))
			}
			return nil
		},
	}
}
