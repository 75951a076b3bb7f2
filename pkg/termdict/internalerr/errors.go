package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNoText           = errors.New("no text found")
	ErrNotPDF           = errors.New("not a pdf document")
	ErrEmbedding        = errors.New("embedding failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)
