// Package errs routes all error construction through cockroachdb/errors so
// every error carries a stack trace and can be tied to a domain sentinel.
package errs

import cr "github.com/cockroachdb/errors"

// Wrap annotates err with msg while keeping the original chain intact.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark ties err to a sentinel so errors.Is(err, markErr) holds upstream
// without flattening the underlying cause.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}
