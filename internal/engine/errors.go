package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataIntegrity marks source data that violates the store's invariants.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrInvalidParameter marks a pipeline parameter outside its allowed domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DataIntegrityError reports a bad value in a source table. Row is 1-based and
// counts data rows only; zero means the error is not tied to a row.
type DataIntegrityError struct {
	Source string
	Row    int
	Field  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("data integrity: ")
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (e *DataIntegrityError) Is(target error) bool { return target == ErrDataIntegrity }

// JoinMismatchError is returned when customer provinces have no coordinate row.
type JoinMismatchError struct {
	Provinces []string // sorted
	Rows      int      // customers affected
}

func (e *JoinMismatchError) Error() string {
	return fmt.Sprintf("join mismatch: %d customer rows reference provinces without coordinates: %s",
		e.Rows, strings.Join(e.Provinces, ", "))
}

func (e *JoinMismatchError) Is(target error) bool { return target == ErrDataIntegrity }

// ParameterError rejects a pipeline argument; it matches ErrInvalidParameter.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Is(target error) bool { return target == ErrInvalidParameter }
