// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

// ScanClient drives the submit/poll/findings protocol of the scan backend
type ScanClient interface {
	// Submit stages the artifact and registers a scan job
	Submit(ctx context.Context, artifact *entities.Artifact, scanName string) (*entities.ScanJob, error)

	// Poll performs one state transition by querying the backend once
	Poll(ctx context.Context, job *entities.ScanJob) (*entities.ScanJob, error)

	// AwaitCompletion polls until the job is terminal or the poll policy gives up
	AwaitCompletion(ctx context.Context, job *entities.ScanJob) (*entities.ScanJob, error)

	// FetchFindings returns one page of findings for a successful job
	FetchFindings(ctx context.Context, job *entities.ScanJob) (*entities.FindingsPage, error)
}

// SeverityPolicy decides whether a package may be admitted
type SeverityPolicy interface {
	Evaluate(page *entities.FindingsPage) entities.Decision
}

// Publisher stores an admitted artifact as a trusted internal package
type Publisher interface {
	Target() entities.PublishTarget
	Publish(ctx context.Context, artifact *entities.Artifact) (*entities.PublishReceipt, error)
}

// DispatchResult is the side-effect outcome of routing a decision
type DispatchResult struct {
	State     entities.PackageState
	Receipt   *entities.PublishReceipt
	Err       error // publish error, if any
	NotifyErr error
}

// OutcomeRouter performs the publish and notify side effects for a decision
type OutcomeRouter interface {
	Dispatch(ctx context.Context, artifact *entities.Artifact, decision entities.Decision) DispatchResult
}
