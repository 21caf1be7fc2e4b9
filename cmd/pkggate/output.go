package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	orchestrators "github.com/ochairo/pkggate/internal/domain-orchestrators"
	"github.com/ochairo/pkggate/internal/domain/entities"
)

type packageView struct {
	Line     int    `json:"line,omitempty"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	State    string `json:"state"`
	Outcome  string `json:"outcome,omitempty"`
	Findings int    `json:"findings"`
	Target   string `json:"target,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type batchView struct {
	BatchID  string         `json:"batch_id"`
	Duration string         `json:"duration"`
	Counts   map[string]int `json:"counts"`
	Packages []packageView  `json:"packages"`
}

type findingView struct {
	Severity string   `json:"severity"`
	Title    string   `json:"title"`
	FilePath string   `json:"file_path,omitempty"`
	Refs     []string `json:"reference_urls,omitempty"`
}

type scanView struct {
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	RunID     string        `json:"run_id"`
	State     string        `json:"state"`
	Outcome   string        `json:"outcome"`
	Truncated bool          `json:"truncated"`
	Findings  []findingView `json:"findings"`
	Duration  string        `json:"duration"`
}

type malformedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type requestView struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type validationReport struct {
	File        string         `json:"file"`
	ConfigError string         `json:"config_error,omitempty"`
	MaxDownload string         `json:"max_download"`
	Packages    []requestView  `json:"packages"`
	Malformed   []malformedRow `json:"malformed"`
}

func newPackageView(o entities.PackageOutcome) packageView {
	v := packageView{
		Line:     o.Line,
		Name:     o.Request.Name,
		URL:      o.Request.SourceURL,
		State:    string(o.State),
		Duration: o.Duration.Round(time.Millisecond).String(),
	}
	if o.Decision != nil {
		v.Outcome = string(o.Decision.Outcome)
		v.Findings = len(o.Decision.Findings)
	}
	if o.Receipt != nil {
		v.Target = string(o.Receipt.Target)
		v.Detail = receiptDetail(o.Receipt)
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return v
}

func receiptDetail(r *entities.PublishReceipt) string {
	switch {
	case r.Registry != nil:
		return fmt.Sprintf("%s/%s@%s", r.Registry.Namespace, r.Registry.Package, r.Registry.Version)
	case r.Commit != nil:
		if r.Commit.DownloadURL != "" {
			return r.Commit.DownloadURL
		}
		return r.Commit.Branch + ":" + r.Commit.FilePath
	default:
		return ""
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBatch prints one row per package followed by the per-state counts
func writeBatch(w io.Writer, result *entities.BatchResult, asJSON bool) error {
	counts := result.Counts()

	if asJSON {
		view := batchView{
			BatchID:  result.BatchID,
			Duration: result.Duration.Round(time.Millisecond).String(),
			Counts:   make(map[string]int, len(counts)),
			Packages: make([]packageView, 0, len(result.Outcomes)),
		}
		for state, n := range counts {
			view.Counts[string(state)] = n
		}
		for _, o := range result.Outcomes {
			view.Packages = append(view.Packages, newPackageView(o))
		}
		return writeJSON(w, view)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPACKAGE\tSTATE\tFINDINGS\tDETAIL")
	for _, o := range result.Outcomes {
		v := newPackageView(o)
		detail := v.Detail
		if v.Error != "" {
			detail = v.Error
		}
		name := v.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", v.Line, name, v.State, v.Findings, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nBatch %s: %d requests in %s (%s)\n",
		result.BatchID, len(result.Outcomes), result.Duration.Round(time.Millisecond), summarizeCounts(counts))
	return err
}

// summarizeCounts renders non-zero counts in summary order, e.g. "2 published, 1 rejected"
func summarizeCounts(counts map[entities.PackageState]int) string {
	var parts []string
	for _, state := range entities.AllPackageStates {
		if n := counts[state]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, state))
		}
	}
	if len(parts) == 0 {
		return "nothing processed"
	}
	return strings.Join(parts, ", ")
}

func writeScan(w io.Writer, request entities.PackageRequest, result *orchestrators.ScanWorkflowResult, asJSON bool) error {
	view := scanView{
		Name:      request.Name,
		URL:       request.SourceURL,
		Outcome:   string(result.Decision.Outcome),
		Truncated: result.Decision.Truncated,
		Findings:  make([]findingView, 0, len(result.Decision.Findings)),
		Duration:  result.WorkflowDuration.Round(time.Millisecond).String(),
	}
	if result.Job != nil {
		view.RunID = result.Job.RunID
		view.State = string(result.Job.State)
	}
	for _, f := range result.Decision.Findings {
		view.Findings = append(view.Findings, findingView{
			Severity: string(f.Severity),
			Title:    f.Title,
			FilePath: f.FilePath,
			Refs:     f.ReferenceURLs,
		})
	}

	if asJSON {
		return writeJSON(w, view)
	}

	fmt.Fprintf(w, "Package:  %s\n", view.Name)
	fmt.Fprintf(w, "Scan run: %s (%s)\n", view.RunID, view.State)
	fmt.Fprintf(w, "Decision: %s\n", strings.ToUpper(view.Outcome))
	fmt.Fprintf(w, "Duration: %s\n", view.Duration)
	if len(view.Findings) == 0 {
		_, err := fmt.Fprintln(w, "\nNo findings.")
		return err
	}

	fmt.Fprintf(w, "\nFindings (%d):\n", len(view.Findings))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, f := range view.Findings {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s\n", i+1, f.Severity, f.Title, f.FilePath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if view.Truncated {
		_, err := fmt.Fprintln(w, "\nMore findings exist than were inspected.")
		return err
	}
	return nil
}

func writeValidation(w io.Writer, report validationReport, asJSON bool) error {
	if asJSON {
		if report.Packages == nil {
			report.Packages = []requestView{}
		}
		if report.Malformed == nil {
			report.Malformed = []malformedRow{}
		}
		return writeJSON(w, report)
	}

	if report.ConfigError != "" {
		fmt.Fprintf(w, "Config:   invalid: %s\n", report.ConfigError)
	} else {
		fmt.Fprintln(w, "Config:   ok")
	}

	fmt.Fprintf(w, "Requests: %s (%d valid, %d malformed)\n", report.File, len(report.Packages), len(report.Malformed))
	for _, p := range report.Packages {
		fmt.Fprintf(w, "  ok    %s  %s\n", p.Name, p.URL)
	}
	for _, m := range report.Malformed {
		fmt.Fprintf(w, "  line %d: %s\n", m.Line, m.Error)
	}
	_, err := fmt.Fprintf(w, "Download limit: %s per artifact\n", report.MaxDownload)
	return err
}
