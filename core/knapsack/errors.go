package knapsack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when items, capacity or scale are malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotConfigured is returned by Resolve before a successful Configure.
	ErrNotConfigured = errors.New("solver not configured")
	// ErrRecurrence signals a broken invariant while filling the tables.
	ErrRecurrence = errors.New("recurrence failed")
	// ErrReconstruction is returned when no resolved tables are available.
	ErrReconstruction = errors.New("reconstruction failed")
)

// InputError describes a validation failure. Index is the offending item
// position or -1 when the failure is not tied to a single item.
type InputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s %s", ErrInvalidInput, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: item at index %d: %s %s", ErrInvalidInput, e.Index, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// RecurrenceError reports the table cell where filling stopped. Item is the
// 1-based item column.
type RecurrenceError struct {
	Item   int
	Row    int
	Reason string
}

func (e *RecurrenceError) Error() string {
	return fmt.Sprintf("%v: item %d row %d: %s", ErrRecurrence, e.Item, e.Row, e.Reason)
}

func (e *RecurrenceError) Unwrap() error { return ErrRecurrence }
