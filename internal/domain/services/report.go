package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

const noReferenceURLs = "No reference URLs available"

// ApprovedSubject is the subject of the admission notice
func ApprovedSubject(name string) string {
	return name + " Package Approved"
}

// FindingsReportSubject is the subject of the rejection notice
func FindingsReportSubject(name string) string {
	return name + " Security Findings Report"
}

// PublishFailedSubject is the subject sent when an admitted package could not be stored
func PublishFailedSubject(name string) string {
	return name + " Package Publish Failed"
}

// FormatFindings renders findings as a numbered report
func FormatFindings(findings []entities.Finding) string {
	var b strings.Builder
	for i, f := range findings {
		refs := noReferenceURLs
		if len(f.ReferenceURLs) > 0 {
			refs = strings.Join(f.ReferenceURLs, ", ")
		}

		fmt.Fprintf(&b, "\n%d. Vulnerability: %s\n", i+1, f.Title)
		fmt.Fprintf(&b, "   - Description: %s\n", f.Description)
		fmt.Fprintf(&b, "   - Severity: %s\n", f.Severity)
		fmt.Fprintf(&b, "   - Recommendation: %s\n", f.Recommendation)
		fmt.Fprintf(&b, "   - Path: %s\n", f.FilePath)
		fmt.Fprintf(&b, "   - Reference URLs: %s\n\n", refs)
	}
	return b.String()
}

// FindingsReportMessage builds the rejection notice for a package
func FindingsReportMessage(name string, decision entities.Decision) gateways.Message {
	body := fmt.Sprintf("Security findings report for external package repository: %s\n\n%s", name, FormatFindings(decision.Findings))
	if decision.Truncated {
		body += fmt.Sprintf("Only the first %d findings were inspected; the scan reported more.\n", len(decision.Findings))
	}
	return gateways.Message{Subject: FindingsReportSubject(name), Body: body}
}

// ApprovedMessage builds the admission notice from a publish receipt
func ApprovedMessage(name string, receipt *entities.PublishReceipt) gateways.Message {
	var body string
	switch {
	case receipt != nil && receipt.Registry != nil:
		body = fmt.Sprintf("AWS CodeArtifact private package details: %s\n\n%s", name, FormatRegistryVersion(receipt.Registry))
	case receipt != nil && receipt.Commit != nil:
		body = FormatCommit(name, receipt.Commit)
	default:
		body = fmt.Sprintf("Private package %s was published.", name)
	}
	return gateways.Message{Subject: ApprovedSubject(name), Body: body}
}

// PublishFailedMessage tells the requester an approved package did not land
func PublishFailedMessage(name string, err error) gateways.Message {
	body := fmt.Sprintf("Package %s passed the security scan but could not be published.\n\nReason: %v\n", name, err)
	return gateways.Message{Subject: PublishFailedSubject(name), Body: body}
}

// FormatRegistryVersion renders registry version metadata
func FormatRegistryVersion(v *entities.RegistryVersion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format: %s\n", v.Format)
	fmt.Fprintf(&b, "Namespace: %s\n", v.Namespace)
	fmt.Fprintf(&b, "Package: %s\n", v.Package)
	fmt.Fprintf(&b, "Version: %s\n", v.Version)
	fmt.Fprintf(&b, "Version revision: %s\n", v.VersionRevision)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	fmt.Fprintf(&b, "Asset: %s (%d bytes)\n", v.AssetName, v.AssetSize)

	if len(v.AssetHashes) > 0 {
		algs := make([]string, 0, len(v.AssetHashes))
		for alg := range v.AssetHashes {
			algs = append(algs, alg)
		}
		sort.Strings(algs)

		b.WriteString("Asset hashes:\n")
		for _, alg := range algs {
			fmt.Fprintf(&b, "  %s: %s\n", alg, v.AssetHashes[alg])
		}
	}
	return b.String()
}

// FormatCommit renders a source-control publish
func FormatCommit(name string, c *entities.CommitInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New private package '%s' pushed to branch '%s'.\n", name, c.Branch)
	fmt.Fprintf(&b, "Commit message: %s\n", c.CommitMessage)
	if c.CommitSHA != "" {
		fmt.Fprintf(&b, "Commit: %s\n", c.CommitSHA)
	}
	fmt.Fprintf(&b, "Uploaded file: %s\n", c.FilePath)
	fmt.Fprintf(&b, "Size: %d bytes\n", c.FileSize)
	fmt.Fprintf(&b, "Download URL: %s\n", c.DownloadURL)
	return b.String()
}
