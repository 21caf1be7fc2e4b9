// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

// ScanBackend is the remote static-analysis service
type ScanBackend interface {
	// CreateUploadURL reserves a staging location for an artifact
	CreateUploadURL(ctx context.Context, scanName string) (*entities.UploadTarget, error)

	// CreateScan registers a scan for an uploaded artifact and returns its run ID
	CreateScan(ctx context.Context, req entities.ScanRequest) (*entities.ScanJob, error)

	// GetScan returns the current state of a scan run
	GetScan(ctx context.Context, scanName, runID string) (entities.ScanState, error)

	// GetFindings returns a single page of findings
	GetFindings(ctx context.Context, query entities.FindingsQuery) (*entities.FindingsPage, error)
}

// StagingUploader transfers artifact bytes to a backend staging location
type StagingUploader interface {
	// Upload PUTs the content and returns the HTTP status code received
	Upload(ctx context.Context, target *entities.UploadTarget, content []byte) (int, error)
}
