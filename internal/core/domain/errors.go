package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers branch on these with IsKind; everything
// else about a failure travels in the wrapped cause.
var (
	// ErrDocumentNotFound covers missing rows and missing stored objects.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidInput marks caller mistakes: bad type names, empty
	// uploads, malformed storage keys.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTemporary marks failures worth retrying: broker outages, OCR
	// backend throttling, open circuits.
	ErrTemporary = errors.New("temporary failure")

	// ErrClassification marks an unexpected internal failure inside the
	// detection engine. Insufficient or below-threshold input is not an
	// error; those paths return a normal unknown result.
	ErrClassification = errors.New("document classification failed")
)

// WrapError attaches a sentinel kind and an operation name to a cause.
// Both the kind and the cause stay matchable through errors.Is.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
