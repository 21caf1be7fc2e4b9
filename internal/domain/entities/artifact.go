// Package entities defines core domain models and data structures.
package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Artifact is the raw content fetched for one package request
type Artifact struct {
	Name      string // Sanitized package name the artifact belongs to
	SourceURL string
	Content   []byte

	digestOnce sync.Once
	digest     string
}

// NewArtifact wraps downloaded bytes for a package
func NewArtifact(name, sourceURL string, content []byte) *Artifact {
	return &Artifact{
		Name:      name,
		SourceURL: sourceURL,
		Content:   content,
	}
}

// FileName returns the asset name used by scan and publish targets
func (a *Artifact) FileName() string {
	return a.Name + ".zip"
}

// Size returns the content length in bytes
func (a *Artifact) Size() int64 {
	return int64(len(a.Content))
}

// Digest returns the hex SHA-256 of the content, computed on first use
func (a *Artifact) Digest() string {
	a.digestOnce.Do(func() {
		sum := sha256.Sum256(a.Content)
		a.digest = hex.EncodeToString(sum[:])
	})
	return a.digest
}
