package entities

import (
	"fmt"
	"strings"
)

// PackageRequest is one requested external package
type PackageRequest struct {
	Name      string
	SourceURL string
}

// NewPackageRequest sanitizes the name and rejects requests that end up empty
func NewPackageRequest(name, sourceURL string) (PackageRequest, error) {
	clean := SanitizePackageName(name)
	if clean == "" {
		return PackageRequest{}, fmt.Errorf("%w: package name %q has no usable characters", ErrMalformedRequest, name)
	}

	url := strings.TrimSpace(sourceURL)
	if url == "" {
		return PackageRequest{}, fmt.Errorf("%w: package %s has no source URL", ErrMalformedRequest, clean)
	}

	return PackageRequest{Name: clean, SourceURL: url}, nil
}

// SanitizePackageName strips every character outside [A-Za-z0-9-_$:.]
func SanitizePackageName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isPackageNameRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isPackageNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '$', r == ':', r == '.':
		return true
	default:
		return false
	}
}

// RequestRecord is one row read from a request source. Exactly one of
// Request and Err is meaningful.
type RequestRecord struct {
	Line    int
	Request PackageRequest
	Err     error
}
