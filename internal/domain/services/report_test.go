package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

func TestFormatFindings(t *testing.T) {
	findings := []entities.Finding{
		{
			Title:          "RCE",
			Description:    "Remote code execution",
			Severity:       entities.SeverityHigh,
			Recommendation: "Sanitize input",
			FilePath:       "src/exec.js",
			ReferenceURLs:  []string{"https://cwe.mitre.org/1", "https://cwe.mitre.org/2"},
		},
		{
			Title:    "Weak hash",
			Severity: entities.SeverityLow,
			FilePath: "src/hash.js",
		},
	}

	got := FormatFindings(findings)

	want := []string{
		"\n1. Vulnerability: RCE\n",
		"   - Description: Remote code execution\n",
		"   - Severity: High\n",
		"   - Recommendation: Sanitize input\n",
		"   - Path: src/exec.js\n",
		"   - Reference URLs: https://cwe.mitre.org/1, https://cwe.mitre.org/2\n\n",
		"\n2. Vulnerability: Weak hash\n",
		"   - Reference URLs: No reference URLs available\n\n",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("report missing %q\n%s", w, got)
		}
	}
}

func TestFindingsReportMessage(t *testing.T) {
	decision := entities.Decision{
		Outcome:   entities.OutcomeReject,
		Findings:  []entities.Finding{{Title: "RCE", Severity: entities.SeverityHigh}},
		Truncated: true,
	}
	msg := FindingsReportMessage("evil-lib", decision)

	if msg.Subject != "evil-lib Security Findings Report" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Security findings report for external package repository: evil-lib\n\n") {
		t.Errorf("unexpected body prefix: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Only the first 1 findings were inspected") {
		t.Error("truncated report should say more findings exist")
	}
}

func TestApprovedMessage(t *testing.T) {
	registry := &entities.PublishReceipt{
		Target: entities.PublishTargetRegistry,
		Registry: &entities.RegistryVersion{
			Format:      "generic",
			Namespace:   "left-pad",
			Package:     "left-pad",
			Version:     "1700000000",
			Status:      "Published",
			AssetName:   "left-pad.zip",
			AssetSize:   42,
			AssetHashes: map[string]string{"SHA-256": "abc", "MD5": "def"},
		},
	}
	msg := ApprovedMessage("left-pad", registry)
	if msg.Subject != "left-pad Package Approved" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "AWS CodeArtifact private package details: left-pad\n\n") {
		t.Errorf("registry body prefix wrong:\n%s", msg.Body)
	}
	for _, w := range []string{"Version: 1700000000", "Asset: left-pad.zip (42 bytes)", "  MD5: def\n  SHA-256: abc"} {
		if !strings.Contains(msg.Body, w) {
			t.Errorf("registry body missing %q\n%s", w, msg.Body)
		}
	}

	commit := &entities.PublishReceipt{
		Target: entities.PublishTargetSourceControl,
		Commit: &entities.CommitInfo{
			Branch:        "left-pad",
			FilePath:      "packages/left-pad.zip",
			CommitMessage: "Add private package - left-pad.zip",
			FileSize:      42,
			DownloadURL:   "https://github.com/acme/pkgs/blob/left-pad/packages/left-pad.zip",
		},
	}
	msg = ApprovedMessage("left-pad", commit)
	for _, w := range []string{"pushed to branch 'left-pad'", "Size: 42 bytes", "Download URL: https://github.com/acme/pkgs/blob/left-pad/packages/left-pad.zip"} {
		if !strings.Contains(msg.Body, w) {
			t.Errorf("commit body missing %q\n%s", w, msg.Body)
		}
	}
}

func TestPublishFailedMessage(t *testing.T) {
	msg := PublishFailedMessage("left-pad", errors.New("digest mismatch"))
	if msg.Subject != "left-pad Package Publish Failed" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "digest mismatch") {
		t.Errorf("body should carry the reason: %s", msg.Body)
	}
}
