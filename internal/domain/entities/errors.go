package entities

import "errors"

// Error kinds, matched with errors.Is at the package boundary
var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrFetch            = errors.New("fetch failed")
	ErrSignature        = errors.New("signature verification failed")
	ErrUpload           = errors.New("upload failed")
	ErrSubmit           = errors.New("scan submission failed")
	ErrScanFailed       = errors.New("scan failed")
	ErrScanTimeout      = errors.New("scan timed out")
	ErrPublish          = errors.New("publish failed")
	ErrNotify           = errors.New("notify failed")
	ErrConfig           = errors.New("invalid configuration")
)
