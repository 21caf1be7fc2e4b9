package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// mockScanBackend replays a fixed sequence of scan states
type mockScanBackend struct {
	mu sync.Mutex

	uploadTarget *entities.UploadTarget
	uploadErr    error
	createErr    error
	states       []entities.ScanState
	getScanErr   error
	page         *entities.FindingsPage
	findingsErr  error

	createCalls   int
	getScanCalls  int
	findingsCalls int
	lastScanReq   entities.ScanRequest
	lastQuery     entities.FindingsQuery
}

func (m *mockScanBackend) CreateUploadURL(_ context.Context, _ string) (*entities.UploadTarget, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if m.uploadTarget != nil {
		return m.uploadTarget, nil
	}
	return &entities.UploadTarget{URL: "https://staging.example/upload", ArtifactID: "artifact-1"}, nil
}

func (m *mockScanBackend) CreateScan(_ context.Context, req entities.ScanRequest) (*entities.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.lastScanReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &entities.ScanJob{ScanName: req.ScanName, RunID: "run-1", State: entities.ScanStateInProgress}, nil
}

func (m *mockScanBackend) GetScan(_ context.Context, _, _ string) (entities.ScanState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getScanCalls++
	if m.getScanErr != nil {
		return "", m.getScanErr
	}
	if len(m.states) == 0 {
		return entities.ScanStateInProgress, nil
	}
	state := m.states[0]
	if len(m.states) > 1 {
		m.states = m.states[1:]
	}
	return state, nil
}

func (m *mockScanBackend) GetFindings(_ context.Context, query entities.FindingsQuery) (*entities.FindingsPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findingsCalls++
	m.lastQuery = query
	return m.page, m.findingsErr
}

type mockUploader struct {
	status int
	err    error
	calls  int
}

func (m *mockUploader) Upload(_ context.Context, _ *entities.UploadTarget, _ []byte) (int, error) {
	m.calls++
	return m.status, m.err
}

// fakeClock advances only when the scan client waits
type fakeClock struct {
	now   time.Time
	waits []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	return nil
}

type mockPublisher struct {
	receipt *entities.PublishReceipt
	err     error
	calls   int
}

func (m *mockPublisher) Target() entities.PublishTarget { return entities.PublishTargetRegistry }

func (m *mockPublisher) Publish(_ context.Context, _ *entities.Artifact) (*entities.PublishReceipt, error) {
	m.calls++
	return m.receipt, m.err
}

type mockNotifier struct {
	messages []gateways.Message
	err      error
}

func (m *mockNotifier) Notify(_ context.Context, msg gateways.Message) error {
	m.messages = append(m.messages, msg)
	return m.err
}

var errBackend = errors.New("backend unavailable")
