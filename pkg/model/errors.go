package model

import "fmt"

// ShapeError reports parameter dimensions that do not match the dataset or
// the fixed two-class structure. It is always fatal and is raised before any
// estimation work starts.
type ShapeError struct {
	What string // which structure is malformed ("beta", "gamma", "dataset", ...)
	Want int
	Got  int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s shape: want %d entries, got %d", e.What, e.Want, e.Got)
}

// NewShapeError creates a new ShapeError.
func NewShapeError(what string, want, got int) *ShapeError {
	return &ShapeError{What: what, Want: want, Got: got}
}

// PriorError reports prior hyperparameter arrays whose dimensions or NaN
// placement do not match gamma's structurally fixed entries.
type PriorError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *PriorError) Error() string {
	return fmt.Sprintf("invalid prior %s: %s", e.Field, e.Message)
}

// NewPriorError creates a new PriorError.
func NewPriorError(field, message string) *PriorError {
	return &PriorError{Field: field, Message: message}
}

// DegeneracyError reports unrecoverable numerical collapse: every
// responsibility term for a subject underflowed to zero simultaneously.
// Partial underflow is handled internally in log space and never surfaces.
type DegeneracyError struct {
	Subject int
}

// Error implements the error interface.
func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("numeric degeneracy: all responsibility mass for subject %d underflowed", e.Subject)
}

// NewDegeneracyError creates a new DegeneracyError.
func NewDegeneracyError(subject int) *DegeneracyError {
	return &DegeneracyError{Subject: subject}
}
