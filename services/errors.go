package services

import (
	"errors"
	"fmt"

	"invoicing-backend/utils"
)

// ErrNotFound is returned when a record is absent or owned by another user
var ErrNotFound = errors.New("record not found")

// ConflictError blocks an operation because of dependent records
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ValidationError reports references that failed tenant or ownership checks
type ValidationError struct {
	Fields utils.FieldErrors
}

func (e *ValidationError) Error() string { return e.Fields.First() }

// TransactionError wraps any failure inside a multi-step sale write
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("failed to %s sale: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
