package kquant

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is below 1 or above the number of samples.
	ErrInvalidK = errors.New("invalid argument: k out of range")

	// ErrInvalidOptions is returned for unusable clustering parameters.
	ErrInvalidOptions = errors.New("invalid argument: options")

	// ErrInvariant marks an internal logic defect. It is only ever carried by a panic.
	ErrInvariant = errors.New("internal invariant violation")
)

func invalidK(k, n int) error {
	return fmt.Errorf("%w: k=%d, samples=%d", ErrInvalidK, k, n)
}

func invariant(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
}
