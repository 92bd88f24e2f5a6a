package metadata

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned by New when the input is not a non-empty XML
// document. Callers can check for it with errors.Is.
var ErrInvalidInput = errors.New("metadata input must be a non-empty XML document")

// NotFoundError reports that a node or attribute the extraction needed is
// missing from the document. Derived properties swallow it unless the Reader
// is configured with ThrowOnError.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in metadata", e.What)
}

func notFound(what string) error {
	return &NotFoundError{What: what}
}
