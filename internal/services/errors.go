package services

import (
	"fmt"
	"strings"
)

// ValidationError is a malformed or incomplete request. Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is a missing zone/method/address/product. Maps to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError is a duplicate name or exhausted code space. Maps to 400.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DependencyError blocks a delete that would orphan referencing records.
// Maps to 400 with the blockers enumerated.
type DependencyError struct {
	Message          string
	DependentMethods []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.DependentMethods, ", "))
}

// InvalidStateError names a state absent from the reference directory.
type InvalidStateError struct {
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("unknown state %q", e.State)
}

// InvalidSubRegionError lists sub-regions absent from a state's reference
// list.
type InvalidSubRegionError struct {
	State      string
	SubRegions []string
}

func (e *InvalidSubRegionError) Error() string {
	return fmt.Sprintf("unknown sub-regions in %s: %s", e.State, strings.Join(e.SubRegions, ", "))
}
