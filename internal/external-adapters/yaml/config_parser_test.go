package yaml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inhies/go-bytesize"

	"github.com/ochairo/pkggate/internal/config"
	"github.com/ochairo/pkggate/internal/domain/entities"
)

func TestConfigParser_Parse_Valid(t *testing.T) {
	parser := NewConfigParser()
	yamlData := []byte(`publisher: source-control
workers: 3
notifier:
  kind: redis
  topic: pkggate-events
  redis:
    addr: localhost:6379
scan:
  poll_interval: 2s
  max_poll_attempts: 90
  timeout: 15m
  max_findings: 10
policy:
  reject_at: high
fetch:
  max_bytes: 64MB
  retries: 0
  allowed_hosts:
    - "*.github.com"
    - files.pythonhosted.org
signature:
  keyring_file: /etc/pkggate/keys.asc
source_control:
  owner: acme
  repo: private-packages
`)

	cfg, err := parser.Parse(yamlData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Publisher != config.PublisherSourceControl {
		t.Errorf("Publisher = %v, want source-control", cfg.Publisher)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.Notifier.Kind != config.NotifierRedis || cfg.Notifier.Redis.Addr != "localhost:6379" {
		t.Errorf("Notifier = %+v", cfg.Notifier)
	}
	if cfg.Scan.PollInterval != 2*time.Second || cfg.Scan.Timeout != 15*time.Minute {
		t.Errorf("Scan durations = %v / %v", cfg.Scan.PollInterval, cfg.Scan.Timeout)
	}
	if cfg.Scan.MaxPollAttempts != 90 || cfg.Scan.MaxFindings != 10 {
		t.Errorf("Scan limits = %d / %d", cfg.Scan.MaxPollAttempts, cfg.Scan.MaxFindings)
	}
	if cfg.Policy.RejectAt != entities.SeverityHigh {
		t.Errorf("RejectAt = %v, want High", cfg.Policy.RejectAt)
	}
	if cfg.Fetch.MaxBytes != 64*bytesize.MB {
		t.Errorf("MaxBytes = %v, want 64MB", cfg.Fetch.MaxBytes)
	}
	if cfg.Fetch.Retries != 0 {
		t.Errorf("Retries = %d, explicit 0 should be kept", cfg.Fetch.Retries)
	}
	if len(cfg.Fetch.AllowedHosts) != 2 {
		t.Errorf("AllowedHosts count = %d, want 2", len(cfg.Fetch.AllowedHosts))
	}
	if cfg.Signature.Suffix != ".asc" {
		t.Errorf("Signature.Suffix = %q, default should be kept", cfg.Signature.Suffix)
	}
	if cfg.SourceControl.APIURL != "https://api.github.com" {
		t.Errorf("APIURL = %q, default should be kept", cfg.SourceControl.APIURL)
	}
}

func TestConfigParser_Parse_Empty(t *testing.T) {
	cfg, err := NewConfigParser().Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	def := config.Default()
	if cfg.Publisher != def.Publisher || cfg.Scan.Timeout != def.Scan.Timeout || cfg.Requests != def.Requests {
		t.Errorf("empty document should yield defaults, got %+v", cfg)
	}
}

func TestConfigParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "publisher: [unterminated"},
		{"bad duration", "scan:\n  poll_interval: soon\n"},
		{"bad size", "fetch:\n  max_bytes: lots\n"},
		{"bad severity", "policy:\n  reject_at: severe\n"},
	}

	parser := NewConfigParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.data))
			if !errors.Is(err, entities.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestConfigParser_ParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pkggate.yaml")
	if err := os.WriteFile(path, []byte("requests: batch.csv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if cfg.Requests != "batch.csv" {
		t.Errorf("Requests = %s, want batch.csv", cfg.Requests)
	}

	if _, err := NewConfigParser().ParseFile(filepath.Join(tmpDir, "missing.yaml")); !errors.Is(err, entities.ErrConfig) {
		t.Errorf("missing file should wrap ErrConfig, got %v", err)
	}
}
