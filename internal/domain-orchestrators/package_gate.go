// Package orchestrators coordinates domain services into the package ingestion workflow.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/domain/interfaces/repositories"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// PackageGate runs each requested package through fetch, scan, decide and dispatch
type PackageGate struct {
	fetcher         gateways.ArtifactFetcher
	verifier        gateways.SignatureVerifier
	scanOrch        *ScanOrchestrator
	router          services.OutcomeRouter
	logger          interfaces.Logger
	workers         int
	signatureSuffix string
	newBatchID      func() string
}

// PackageGateConfig holds configuration for the gate
type PackageGateConfig struct {
	// Workers bounds concurrent packages. 1 processes strictly in order.
	Workers int
	// SignatureSuffix is appended to the source URL to locate the detached signature
	SignatureSuffix string
}

// NewPackageGate creates a new gate. verifier may be nil to skip signature checks;
// router may be nil when the gate is only used through Inspect.
func NewPackageGate(
	fetcher gateways.ArtifactFetcher,
	verifier gateways.SignatureVerifier,
	scanOrch *ScanOrchestrator,
	router services.OutcomeRouter,
	logger interfaces.Logger,
	config PackageGateConfig,
) *PackageGate {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	suffix := config.SignatureSuffix
	if suffix == "" {
		suffix = ".asc"
	}

	return &PackageGate{
		fetcher:         fetcher,
		verifier:        verifier,
		scanOrch:        scanOrch,
		router:          router,
		logger:          logger,
		workers:         workers,
		signatureSuffix: suffix,
		newBatchID:      uuid.NewString,
	}
}

// Run reads the request source and processes every record. Only an unreadable
// source or cancellation is returned as an error; package failures are outcomes.
func (g *PackageGate) Run(ctx context.Context, source repositories.RequestSource) (*entities.BatchResult, error) {
	records, err := source.Requests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	return g.RunRecords(ctx, records)
}

// RunRecords processes records and reports outcomes in record order
func (g *PackageGate) RunRecords(ctx context.Context, records []entities.RequestRecord) (*entities.BatchResult, error) {
	startTime := time.Now()
	result := &entities.BatchResult{BatchID: g.newBatchID()}
	log := g.logger.With(interfaces.F("batch_id", result.BatchID))

	log.Info("batch started", interfaces.F("requests", len(records)), interfaces.F("workers", g.workers))

	outcomes := make([]*entities.PackageOutcome, len(records))
	if g.workers == 1 {
		for i, rec := range records {
			if ctx.Err() != nil {
				break
			}
			outcome := g.processRecord(ctx, log, rec)
			outcomes[i] = &outcome
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(g.workers)
		for i, rec := range records {
			if ctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				outcome := g.processRecord(ctx, log, rec)
				outcomes[i] = &outcome
				return nil
			})
		}
		_ = eg.Wait()
	}

	for _, o := range outcomes {
		if o != nil {
			result.Outcomes = append(result.Outcomes, *o)
		}
	}
	result.Duration = time.Since(startTime)

	counts := result.Counts()
	fields := []interfaces.Field{interfaces.F("duration", result.Duration)}
	for _, state := range entities.AllPackageStates {
		if counts[state] > 0 {
			fields = append(fields, interfaces.F(string(state), counts[state]))
		}
	}
	log.Info("batch finished", fields...)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch interrupted after %d of %d requests: %w", len(result.Outcomes), len(records), err)
	}
	return result, nil
}

func (g *PackageGate) processRecord(ctx context.Context, log interfaces.Logger, rec entities.RequestRecord) entities.PackageOutcome {
	if rec.Err != nil {
		log.Warn("skipping malformed request", interfaces.F("line", rec.Line), interfaces.F("error", rec.Err))
		return entities.PackageOutcome{Line: rec.Line, State: entities.StateMalformed, Err: rec.Err}
	}

	outcome := g.process(ctx, log.With(interfaces.F("package", rec.Request.Name)), rec.Request)
	outcome.Line = rec.Line
	return outcome
}

// ProcessPackage runs one request through the full workflow. Failures are
// isolated into the returned outcome.
func (g *PackageGate) ProcessPackage(ctx context.Context, request entities.PackageRequest) entities.PackageOutcome {
	return g.process(ctx, g.logger.With(interfaces.F("package", request.Name)), request)
}

func (g *PackageGate) process(ctx context.Context, log interfaces.Logger, request entities.PackageRequest) entities.PackageOutcome {
	startTime := time.Now()
	outcome := entities.PackageOutcome{Request: request}

	artifact, scan, err := g.inspect(ctx, log, request)
	if err != nil {
		outcome.State = classify(err)
		if ctx.Err() != nil {
			outcome.State = entities.StateInterrupted
		}
		outcome.Err = err
		outcome.Duration = time.Since(startTime)
		log.Error("package failed", interfaces.F("state", string(outcome.State)), interfaces.F("error", err))
		return outcome
	}

	decision := scan.Decision
	outcome.Decision = &decision

	log.Info("dispatching", interfaces.F("stage", "dispatch"), interfaces.F("outcome", string(decision.Outcome)))
	dispatch := g.router.Dispatch(ctx, artifact, decision)
	outcome.State = dispatch.State
	outcome.Receipt = dispatch.Receipt
	outcome.Err = dispatch.Err
	outcome.Duration = time.Since(startTime)

	log.Info("package done", interfaces.F("state", string(outcome.State)), interfaces.F("duration", outcome.Duration))
	return outcome
}

// Inspect fetches, verifies and scans a package and returns the decision
// without publishing or notifying
func (g *PackageGate) Inspect(ctx context.Context, request entities.PackageRequest) (*ScanWorkflowResult, error) {
	_, scan, err := g.inspect(ctx, g.logger.With(interfaces.F("package", request.Name)), request)
	return scan, err
}

func (g *PackageGate) inspect(ctx context.Context, log interfaces.Logger, request entities.PackageRequest) (*entities.Artifact, *ScanWorkflowResult, error) {
	// Step 1: Fetch
	log.Info("fetching artifact", interfaces.F("stage", "fetch"), interfaces.F("url", request.SourceURL))
	content, err := g.fetcher.Fetch(ctx, request.SourceURL)
	if err != nil {
		return nil, nil, ensureKind(err, entities.ErrFetch)
	}
	artifact := entities.NewArtifact(request.Name, request.SourceURL, content)
	log.Info("artifact fetched", interfaces.F("stage", "fetched"), interfaces.F("bytes", artifact.Size()))

	// Step 2: Optional detached signature
	if g.verifier != nil {
		sigURL := request.SourceURL + g.signatureSuffix
		log.Info("verifying signature", interfaces.F("stage", "verify"), interfaces.F("signature_url", sigURL))
		if err := g.verifier.Verify(ctx, artifact.Content, sigURL); err != nil {
			return nil, nil, ensureKind(err, entities.ErrSignature)
		}
	}

	// Step 3: Scan and decide
	scan, err := g.scanOrch.PerformScanWorkflow(ctx, log, artifact)
	if err != nil {
		return nil, nil, err
	}
	return artifact, scan, nil
}

// classify maps a workflow error onto the terminal state it represents
func classify(err error) entities.PackageState {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return entities.StateInterrupted
	case errors.Is(err, entities.ErrMalformedRequest):
		return entities.StateMalformed
	case errors.Is(err, entities.ErrFetch):
		return entities.StateFetchFailed
	case errors.Is(err, entities.ErrSignature):
		return entities.StateVerificationFailed
	case errors.Is(err, entities.ErrScanTimeout):
		return entities.StateScanTimedOut
	default:
		return entities.StateScanFailed
	}
}

func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %v", kind, err)
}
