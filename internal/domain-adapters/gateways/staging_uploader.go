package gateways

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// StagingUploader PUTs artifacts to presigned staging URLs
type StagingUploader struct {
	client *retryablehttp.Client
}

// NewStagingUploader creates an uploader on the shared client
func NewStagingUploader(client *retryablehttp.Client) gateways.StagingUploader {
	return &StagingUploader{client: client}
}

// Upload sends content with the headers the backend requires and reports the status code
func (u *StagingUploader) Upload(ctx context.Context, target *entities.UploadTarget, content []byte) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, target.URL, content)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload request: %w", err)
	}
	for key, value := range target.Headers {
		req.Header.Set(key, value)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to upload artifact: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
