package orchestrators

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

type mockFetcher struct {
	mu      sync.Mutex
	content map[string][]byte
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	data, ok := m.content[url]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	return data, nil
}

type mockVerifier struct {
	valid bool
	urls  []string
}

func (m *mockVerifier) Verify(_ context.Context, _ []byte, signatureURL string) error {
	m.urls = append(m.urls, signatureURL)
	if !m.valid {
		return errors.New("bad signature")
	}
	return nil
}

// mockBackend completes every scan immediately with per-package findings
type mockBackend struct {
	mu           sync.Mutex
	findings     map[string][]entities.Finding
	states       map[string]entities.ScanState
	createScans  int
	uploadStatus map[string]int
}

func (m *mockBackend) CreateUploadURL(_ context.Context, scanName string) (*entities.UploadTarget, error) {
	return &entities.UploadTarget{URL: "https://s3/" + scanName, ArtifactID: "id-" + scanName}, nil
}

func (m *mockBackend) CreateScan(_ context.Context, req entities.ScanRequest) (*entities.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createScans++
	return &entities.ScanJob{ScanName: req.ScanName, RunID: "run-" + req.ScanName, State: entities.ScanStateInProgress}, nil
}

func (m *mockBackend) GetScan(_ context.Context, scanName, _ string) (entities.ScanState, error) {
	if state, ok := m.states[scanName]; ok {
		return state, nil
	}
	return entities.ScanStateSuccessful, nil
}

func (m *mockBackend) GetFindings(_ context.Context, query entities.FindingsQuery) (*entities.FindingsPage, error) {
	return &entities.FindingsPage{Findings: m.findings[query.ScanName]}, nil
}

// Upload implements StagingUploader; the status is chosen by URL
func (m *mockBackend) Upload(_ context.Context, target *entities.UploadTarget, _ []byte) (int, error) {
	if status, ok := m.uploadStatus[target.URL]; ok {
		return status, nil
	}
	return 200, nil
}

type mockRegistry struct {
	mu     sync.Mutex
	inputs []gateways.RegistryVersionInput
}

func (m *mockRegistry) PublishVersion(_ context.Context, input gateways.RegistryVersionInput) (*entities.RegistryVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = io.Copy(io.Discard, input.Content)
	m.inputs = append(m.inputs, input)
	return &entities.RegistryVersion{Namespace: input.Namespace, Package: input.Package, Version: input.Version}, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	messages []gateways.Message
}

func (m *mockNotifier) Notify(_ context.Context, msg gateways.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	for i, msg := range m.messages {
		out[i] = msg.Subject
	}
	return out
}
