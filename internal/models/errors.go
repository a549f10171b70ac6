package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an explicit id or name lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a natural key is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIncompleteRecord is returned when a record lacks a field its template needs.
	ErrIncompleteRecord = errors.New("incomplete record")

	// ErrUnsupportedFormat is returned for an output format no renderer is registered under.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNumberingConflict is returned when a write transaction lost a race for the
	// database or an invoice number and has to be retried from the start.
	ErrNumberingConflict = errors.New("invoice numbering conflict")

	// ErrRender is returned when a renderer fails to produce an artifact.
	ErrRender = errors.New("render failed")

	// ErrIO is returned when an artifact cannot be written into place.
	ErrIO = errors.New("artifact write failed")

	// ErrTemplateInUse is returned when deleting a template that records still reference.
	ErrTemplateInUse = errors.New("template is in use")

	// ErrInUse is returned when deleting an account or client that other records reference.
	ErrInUse = errors.New("record is in use")

	// ErrNumberIssued is returned when deleting an invoice that already holds a number.
	// Such invoices must be cancelled instead so the number is never reissued.
	ErrNumberIssued = errors.New("invoice number already issued")

	// ErrInvalidInput is returned when command input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriodDay is returned for a billing-period day outside 1-31.
	ErrInvalidPeriodDay = errors.New("billing period day must be between 1 and 31")
)

// IncompleteRecordError names the record field a template binding could not fill.
type IncompleteRecordError struct {
	Kind  string
	ID    int64
	Field string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("%s %d: missing required field %q", e.Kind, e.ID, e.Field)
}

func (e *IncompleteRecordError) Is(target error) bool {
	return target == ErrIncompleteRecord
}

// RenderError wraps a renderer failure with the format that produced it.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}
