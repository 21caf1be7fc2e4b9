package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

func TestParseRequests(t *testing.T) {
	input := `left-pad,https://github.com/left-pad/left-pad/archive/refs/heads/master.zip

bad row with no url
react@18!,https://example.com/react.zip
a,b,c
  spaced , https://example.com/spaced.zip
,https://example.com/nameless.zip
`

	records, err := ParseRequests(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRequests() error = %v", err)
	}

	if len(records) != 6 {
		t.Fatalf("got %d records, want 6", len(records))
	}

	tests := []struct {
		line      int
		name      string
		malformed bool
	}{
		{1, "left-pad", false},
		{3, "", true},
		{4, "react18", false},
		{5, "", true},
		{6, "spaced", false},
		{7, "", true},
	}

	for i, tt := range tests {
		rec := records[i]
		if rec.Line != tt.line {
			t.Errorf("record %d: Line = %d, want %d", i, rec.Line, tt.line)
		}
		if tt.malformed {
			if !errors.Is(rec.Err, entities.ErrMalformedRequest) {
				t.Errorf("record %d: expected ErrMalformedRequest, got %v", i, rec.Err)
			}
			continue
		}
		if rec.Err != nil {
			t.Errorf("record %d: unexpected error %v", i, rec.Err)
		}
		if rec.Request.Name != tt.name {
			t.Errorf("record %d: Name = %q, want %q", i, rec.Request.Name, tt.name)
		}
	}

	if records[4].Request.SourceURL != "https://example.com/spaced.zip" {
		t.Errorf("SourceURL = %q, want trimmed URL", records[4].Request.SourceURL)
	}
}

func TestParseRequests_Empty(t *testing.T) {
	records, err := ParseRequests(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseRequests() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestParseRequests_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseRequests(ctx, strings.NewReader("a,b\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRequestSource_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "external-package-request.csv")
	if err := os.WriteFile(path, []byte("pkg,https://example.com/pkg.zip\n"), 0600); err != nil {
		t.Fatal(err)
	}

	records, err := NewRequestSource(path).Requests(context.Background())
	if err != nil {
		t.Fatalf("Requests() error = %v", err)
	}
	if len(records) != 1 || records[0].Request.Name != "pkg" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestRequestSource_MissingFile(t *testing.T) {
	_, err := NewRequestSource("/nonexistent/requests.csv").Requests(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to open request file") {
		t.Errorf("unexpected error: %v", err)
	}
}
