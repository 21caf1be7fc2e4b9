package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// ScanOrchestrator coordinates the scan-and-decide workflow for one artifact
type ScanOrchestrator struct {
	scanClient services.ScanClient
	policy     services.SeverityPolicy
}

// NewScanOrchestrator creates a new scan orchestrator
func NewScanOrchestrator(scanClient services.ScanClient, policy services.SeverityPolicy) *ScanOrchestrator {
	return &ScanOrchestrator{
		scanClient: scanClient,
		policy:     policy,
	}
}

// ScanWorkflowResult contains the completed scan and the decision taken on it
type ScanWorkflowResult struct {
	Job              *entities.ScanJob
	Page             *entities.FindingsPage
	Decision         entities.Decision
	WorkflowDuration time.Duration
}

// PerformScanWorkflow submits the artifact, waits for the scan, and evaluates one
// findings page. A Decision exists only when the scan completed successfully.
func (o *ScanOrchestrator) PerformScanWorkflow(ctx context.Context, log interfaces.Logger, artifact *entities.Artifact) (*ScanWorkflowResult, error) {
	startTime := time.Now()

	// Step 1: Stage the artifact and register the scan
	log.Info("submitting scan", interfaces.F("stage", "submit"), interfaces.F("sha256", artifact.Digest()))
	job, err := o.scanClient.Submit(ctx, artifact, artifact.Name)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", artifact.Name, err)
	}

	// Step 2: Wait for a terminal state
	log.Info("polling scan", interfaces.F("stage", "poll"), interfaces.F("run_id", job.RunID))
	job, err = o.scanClient.AwaitCompletion(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("await %s: %w", artifact.Name, err)
	}

	// Step 3: One page of findings; any state other than Successful fails here
	page, err := o.scanClient.FetchFindings(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("findings %s: %w", artifact.Name, err)
	}

	// Step 4: Decide
	decision := o.policy.Evaluate(page)
	log.Info("scan scored",
		interfaces.F("stage", "score"),
		interfaces.F("outcome", string(decision.Outcome)),
		interfaces.F("findings", len(decision.Findings)),
		interfaces.F("truncated", decision.Truncated))

	return &ScanWorkflowResult{
		Job:              job,
		Page:             page,
		Decision:         decision,
		WorkflowDuration: time.Since(startTime),
	}, nil
}
