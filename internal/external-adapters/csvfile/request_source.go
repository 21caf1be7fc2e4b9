// Package csvfile reads package requests from headerless "name,url" CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/repositories"
)

// RequestSource reads requests from a CSV file on disk
type RequestSource struct {
	path string
}

// NewRequestSource creates a request source for the given file
func NewRequestSource(path string) repositories.RequestSource {
	return &RequestSource{path: path}
}

// Requests reads every row of the file. The file is read once per call.
func (s *RequestSource) Requests(ctx context.Context) ([]entities.RequestRecord, error) {
	//nolint:gosec // G304: path is the operator-supplied request file
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request file %s: %w", s.path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return ParseRequests(ctx, f)
}

// ParseRequests parses rows from r. A row without exactly two fields becomes a
// record carrying ErrMalformedRequest; blank lines are skipped.
func ParseRequests(ctx context.Context, r io.Reader) ([]entities.RequestRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records []entities.RequestRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			records = append(records, entities.RequestRecord{
				Line: parseErr.StartLine,
				Err:  fmt.Errorf("%w: line %d: %v", entities.ErrMalformedRequest, parseErr.StartLine, parseErr.Err),
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read requests: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, parseRow(line, row))
	}

	return records, nil
}

func parseRow(line int, row []string) entities.RequestRecord {
	if len(row) != 2 {
		return entities.RequestRecord{
			Line: line,
			Err:  fmt.Errorf("%w: line %d: expected 2 fields (name,url), got %d", entities.ErrMalformedRequest, line, len(row)),
		}
	}

	request, err := entities.NewPackageRequest(strings.TrimSpace(row[0]), row[1])
	if err != nil {
		return entities.RequestRecord{Line: line, Err: fmt.Errorf("line %d: %w", line, err)}
	}
	return entities.RequestRecord{Line: line, Request: request}
}
