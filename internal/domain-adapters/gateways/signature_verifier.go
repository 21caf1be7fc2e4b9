package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/external-adapters/gpg"
)

// gpgSignatureVerifier downloads detached signatures and checks them with the GPG adapter
type gpgSignatureVerifier struct {
	fetcher  gateways.ArtifactFetcher
	verifier *gpg.Verifier
	logger   interfaces.Logger
}

// NewGPGSignatureVerifier loads the keyring file and returns a verifier that
// fetches signatures through fetcher
func NewGPGSignatureVerifier(fetcher gateways.ArtifactFetcher, keyringFile string, logger interfaces.Logger) (gateways.SignatureVerifier, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	verifier := gpg.NewVerifier()
	if err := verifier.ImportKeyFromFile(keyringFile); err != nil {
		return nil, fmt.Errorf("%w: failed to import GPG keyring %s: %v", entities.ErrConfig, keyringFile, err)
	}

	logger.Debug("GPG keyring loaded",
		interfaces.F("file", keyringFile),
		interfaces.F("keys", verifier.KeyringSize()))

	return &gpgSignatureVerifier{fetcher: fetcher, verifier: verifier, logger: logger}, nil
}

// Verify fails with ErrSignature when the signature is missing or does not match
func (g *gpgSignatureVerifier) Verify(ctx context.Context, content []byte, signatureURL string) error {
	sig, err := g.fetcher.Fetch(ctx, signatureURL)
	if err != nil {
		return fmt.Errorf("%w: failed to download signature: %v", entities.ErrSignature, err)
	}

	signer, err := g.verifier.VerifyDetached(content, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrSignature, err)
	}

	g.logger.Info("signature verified",
		interfaces.F("signature_url", signatureURL),
		interfaces.F("signer", signer))
	return nil
}
