// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// MaxFindingsPerPage is the largest page the backend is asked for
const MaxFindingsPerPage = 20

// PollPolicy bounds AwaitCompletion. Zero MaxAttempts and zero Timeout poll
// until the job leaves InProgress.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// ScanClientConfig holds scan submission parameters
type ScanClientConfig struct {
	ScanType      string
	AnalysisType  string
	MaxFindings   int
	FindingStatus string
	Poll          PollPolicy
}

type waitFunc func(ctx context.Context, d time.Duration) error

type scanClient struct {
	backend  gateways.ScanBackend
	uploader gateways.StagingUploader
	config   ScanClientConfig
	logger   interfaces.Logger
	wait     waitFunc
	now      func() time.Time
	newToken func() string
}

// NewScanClient creates a scan client over the given backend
func NewScanClient(backend gateways.ScanBackend, uploader gateways.StagingUploader, config ScanClientConfig, logger interfaces.Logger) services.ScanClient {
	return newScanClient(backend, uploader, config, logger, sleepContext, time.Now)
}

func newScanClient(backend gateways.ScanBackend, uploader gateways.StagingUploader, config ScanClientConfig, logger interfaces.Logger, wait waitFunc, now func() time.Time) *scanClient {
	if config.ScanType == "" {
		config.ScanType = "Standard"
	}
	if config.AnalysisType == "" {
		config.AnalysisType = "Security"
	}
	if config.FindingStatus == "" {
		config.FindingStatus = "Open"
	}
	if config.Poll.Interval <= 0 {
		config.Poll.Interval = time.Second
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &scanClient{
		backend:  backend,
		uploader: uploader,
		config:   config,
		logger:   logger,
		wait:     wait,
		now:      now,
		newToken: uuid.NewString,
	}
}

// Submit uploads the artifact to the staging location and creates the scan
func (c *scanClient) Submit(ctx context.Context, artifact *entities.Artifact, scanName string) (*entities.ScanJob, error) {
	target, err := c.backend.CreateUploadURL(ctx, scanName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create upload URL: %v", entities.ErrUpload, err)
	}

	status, err := c.uploader.Upload(ctx, target, artifact.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrUpload, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: staging upload returned HTTP %d", entities.ErrUpload, status)
	}
	c.logger.Debug("artifact staged", interfaces.F("artifact_id", target.ArtifactID), interfaces.F("bytes", artifact.Size()))

	job, err := c.backend.CreateScan(ctx, entities.ScanRequest{
		ArtifactID:   target.ArtifactID,
		ScanName:     scanName,
		ScanType:     c.config.ScanType,
		AnalysisType: c.config.AnalysisType,
		ClientToken:  c.newToken(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrSubmit, err)
	}
	if job.State == "" {
		job.State = entities.ScanStateInProgress
	}
	if job.ScanName == "" {
		job.ScanName = scanName
	}
	return job, nil
}

// Poll queries the backend once and returns the job with its new state
func (c *scanClient) Poll(ctx context.Context, job *entities.ScanJob) (*entities.ScanJob, error) {
	state, err := c.backend.GetScan(ctx, job.ScanName, job.RunID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: polling scan %s interrupted: %w", entities.ErrScanFailed, job.ScanName, ctxErr)
		}
		return nil, fmt.Errorf("%w: failed to get scan %s run %s: %v", entities.ErrScanFailed, job.ScanName, job.RunID, err)
	}
	next := *job
	next.State = state
	return &next, nil
}

// AwaitCompletion polls at the configured interval until the job is terminal
func (c *scanClient) AwaitCompletion(ctx context.Context, job *entities.ScanJob) (*entities.ScanJob, error) {
	policy := c.config.Poll
	start := c.now()
	current := job

	for attempt := 1; ; attempt++ {
		next, err := c.Poll(ctx, current)
		if err != nil {
			return current, err
		}
		current = next
		if current.State.Terminal() {
			c.logger.Debug("scan finished", interfaces.F("state", string(current.State)), interfaces.F("polls", attempt))
			return current, nil
		}

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return current, fmt.Errorf("%w: scan %s still %s after %d polls", entities.ErrScanTimeout, current.ScanName, current.State, attempt)
		}
		if policy.Timeout > 0 && c.now().Sub(start)+policy.Interval > policy.Timeout {
			return current, fmt.Errorf("%w: scan %s still %s after %s", entities.ErrScanTimeout, current.ScanName, current.State, policy.Timeout)
		}

		if err := c.wait(ctx, policy.Interval); err != nil {
			return current, fmt.Errorf("%w: polling scan %s interrupted: %w", entities.ErrScanFailed, current.ScanName, err)
		}
	}
}

// FetchFindings returns the first page of findings for a successful scan
func (c *scanClient) FetchFindings(ctx context.Context, job *entities.ScanJob) (*entities.FindingsPage, error) {
	if job.State != entities.ScanStateSuccessful {
		return nil, fmt.Errorf("%w: scan %s run %s ended in state %s", entities.ErrScanFailed, job.ScanName, job.RunID, job.State)
	}

	limit := c.config.MaxFindings
	if limit <= 0 || limit > MaxFindingsPerPage {
		limit = MaxFindingsPerPage
	}

	page, err := c.backend.GetFindings(ctx, entities.FindingsQuery{
		ScanName:   job.ScanName,
		MaxResults: limit,
		Status:     c.config.FindingStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get findings for %s: %v", entities.ErrScanFailed, job.ScanName, err)
	}
	if page == nil {
		page = &entities.FindingsPage{}
	}
	return page, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
