package gateways

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/ochairo/pkggate/internal/domain/entities"
)

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := m[url]
	if !ok {
		return nil, entities.ErrFetch
	}
	return data, nil
}

func writeKeyring(t *testing.T, entity *openpgp.Entity) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "keys.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGPGSignatureVerifier(t *testing.T) {
	entity, err := openpgp.NewEntity("pkggate test", "", "test@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("archive")
	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatal(err)
	}

	fetcher := mapFetcher{"https://example.com/pkg.zip.asc": sig.Bytes()}
	verifier, err := NewGPGSignatureVerifier(fetcher, writeKeyring(t, entity), nil)
	if err != nil {
		t.Fatalf("NewGPGSignatureVerifier() error = %v", err)
	}

	if err := verifier.Verify(context.Background(), content, "https://example.com/pkg.zip.asc"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	if err := verifier.Verify(context.Background(), []byte("tampered"), "https://example.com/pkg.zip.asc"); !errors.Is(err, entities.ErrSignature) {
		t.Errorf("tampered content: expected ErrSignature, got %v", err)
	}

	if err := verifier.Verify(context.Background(), content, "https://example.com/missing.asc"); !errors.Is(err, entities.ErrSignature) {
		t.Errorf("missing signature: expected ErrSignature, got %v", err)
	}
}

func TestNewGPGSignatureVerifier_BadKeyring(t *testing.T) {
	_, err := NewGPGSignatureVerifier(mapFetcher{}, "/nonexistent/keys.asc", nil)
	if !errors.Is(err, entities.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
