package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformed         = errors.New("malformed project")
	ErrUnsupportedSchema = errors.New("unsupported project schema")
	ErrCyclicReference   = errors.New("cyclic sequence reference")
	ErrDanglingReference = errors.New("dangling reference")
)

// MalformedProjectError reports input that cannot be decoded or lacks a
// required structural element.
type MalformedProjectError struct {
	Reason string
	Err    error
}

func (e *MalformedProjectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed project: %s: %v", e.Reason, e.Err)
	}
	return "malformed project: " + e.Reason
}

func (e *MalformedProjectError) Unwrap() error { return e.Err }

func (e *MalformedProjectError) Is(target error) bool { return target == ErrMalformed }

// UnsupportedSchemaError reports a well-formed document whose root element or
// version marker is outside what the parser understands.
type UnsupportedSchemaError struct {
	Root    string
	Version string
}

func (e *UnsupportedSchemaError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("unsupported project schema: root <%s> has no version", e.Root)
	}
	return fmt.Sprintf("unsupported project schema: <%s Version=%q> (supported %d-%d)",
		e.Root, e.Version, MinSchemaVersion, MaxSchemaVersion)
}

func (e *UnsupportedSchemaError) Is(target error) bool { return target == ErrUnsupportedSchema }

// CyclicSequenceReferenceError reports a nested sequence that would re-enter
// a sequence already being expanded. Path lists the active expansion path,
// master first, ending with the offending SequenceID.
type CyclicSequenceReferenceError struct {
	SequenceID string
	Path       []string
}

func (e *CyclicSequenceReferenceError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("cyclic sequence reference: %s", e.SequenceID)
	}
	return fmt.Sprintf("cyclic sequence reference: %s (%s)", e.SequenceID, strings.Join(e.Path, " -> "))
}

func (e *CyclicSequenceReferenceError) Is(target error) bool { return target == ErrCyclicReference }

// DanglingReferenceError reports a reference to an object id that is not
// present in the document or model.
type DanglingReferenceError struct {
	Ref  string
	From string
}

func (e *DanglingReferenceError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("dangling reference %q", e.Ref)
	}
	return fmt.Sprintf("dangling reference %q from %s", e.Ref, e.From)
}

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

func malformed(reason string, err error) error {
	return &MalformedProjectError{Reason: reason, Err: err}
}
