// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

// RequestSource supplies requested packages in order. A malformed row is
// reported as a record with Err set; only a failure to read the source at
// all is returned as an error.
type RequestSource interface {
	Requests(ctx context.Context) ([]entities.RequestRecord, error)
}
