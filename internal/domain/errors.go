package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrFetchCancelled indicates a fetch was superseded by a newer one.
	// It is never surfaced to the user.
	ErrFetchCancelled = errors.New("fetch cancelled")

	// ErrInvalidInput indicates a rejected argument (page, page size or count)
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceOffline indicates the artwork source is unreachable
	ErrSourceOffline = errors.New("artwork source is unreachable")

	// ErrMalformedPayload indicates the source answered with something we cannot read
	ErrMalformedPayload = errors.New("malformed payload")
)

// FetchError reports a failed page fetch (network, HTTP status or payload)
type FetchError struct {
	Page int
	Size int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d (size %d): %v", e.Page, e.Size, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err only signals a superseded fetch
func IsCancelled(err error) bool {
	return errors.Is(err, ErrFetchCancelled)
}
