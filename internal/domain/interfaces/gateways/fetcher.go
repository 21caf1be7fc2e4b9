package gateways

import "context"

// ArtifactFetcher downloads raw artifact bytes
type ArtifactFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SignatureVerifier checks a detached signature over content
type SignatureVerifier interface {
	Verify(ctx context.Context, content []byte, signatureURL string) error
}
