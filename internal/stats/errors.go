package stats

import (
	"errors"
	"fmt"
)

// ErrUnknown reports a fetch that failed for a reason other than the store.
var ErrUnknown = errors.New("unknown analytics failure")

// StoreError reports a failed query against the underlying store.
type StoreError struct {
	Op     string
	Reason string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %s", e.Op, e.Reason)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, err error) error {
	return &StoreError{Op: op, Reason: err.Error(), Err: err}
}
