package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an item failed or why an internal invariant broke.
type ErrorKind string

// Fetch failures.
const (
	KindNotFound          ErrorKind = "not_found"
	KindNetworkFailure    ErrorKind = "network_failure"
	KindUnsupportedSource ErrorKind = "unsupported_source"
)

// Transcode failures.
const (
	KindToolMissing       ErrorKind = "tool_missing"
	KindConversionFailure ErrorKind = "conversion_failure"
	KindFilesystemError   ErrorKind = "filesystem_error"
)

// Internal invariant violations. These indicate a bug, not a bad input.
const (
	KindDuplicateID       ErrorKind = "duplicate_id"
	KindUnknownID         ErrorKind = "unknown_id"
	KindIllegalTransition ErrorKind = "illegal_transition"
	KindPanic             ErrorKind = "panic"
)

// FetchError is returned by fetchers.
type FetchError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TranscodeError is returned by transcoders.
type TranscodeError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *TranscodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transcode %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("transcode %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// InternalError reports a broken lifecycle invariant.
type InternalError struct {
	Kind   ErrorKind
	ID     string
	Detail string
}

func (e *InternalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("internal: %s: %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("internal: %s: %s: %s", e.Kind, e.ID, e.Detail)
}

// KindOf returns the ErrorKind carried by err, or "" if err carries none.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var te *TranscodeError
	if errors.As(err, &te) {
		return te.Kind
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsInternal reports whether err is an *InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
