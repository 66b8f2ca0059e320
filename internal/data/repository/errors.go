package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrValueTooLong means a value exceeded its column width.
	ErrValueTooLong = errors.New("value too long")
)

// DuplicateError reports a unique constraint violation on Field
// (username, email or phone_number).
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
	}
	return "duplicate " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
)
