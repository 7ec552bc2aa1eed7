package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnsupportedFormat indicates a processor was asked to handle a
	// MIME type outside its supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptInput indicates content that matched its declared MIME
	// type but could not be parsed.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrUnsupportedEncoding indicates content in an encoding the
	// processor cannot decode.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrScriptFormat indicates the dialogue generator output contained
	// zero parsable turns.
	ErrScriptFormat = errors.New("script format: no parsable turns")

	// ErrAlreadyProcessed indicates a second write to a document's
	// extracted text.
	ErrAlreadyProcessed = errors.New("document already processed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFetchers indicates a run was requested with no enabled sources.
	ErrNoFetchers = errors.New("no fetchers enabled")
)

// SpeechErrorKind classifies synthesis failures for retry decisions.
type SpeechErrorKind int

const (
	// SpeechTransient marks retryable failures: rate limits, timeouts,
	// backend 5xx responses.
	SpeechTransient SpeechErrorKind = iota

	// SpeechPermanent marks non-retryable failures: invalid voice,
	// rejected content.
	SpeechPermanent
)

// String returns the kind name.
func (k SpeechErrorKind) String() string {
	if k == SpeechPermanent {
		return "permanent"
	}
	return "transient"
}

// SpeechError is a classified failure from the speech synthesis backend.
type SpeechError struct {
	Kind SpeechErrorKind
	Err  error
}

// Error implements the error interface.
func (e *SpeechError) Error() string {
	return fmt.Sprintf("speech synthesis (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SpeechError) Unwrap() error {
	return e.Err
}

// NewTransientSpeechError wraps err as a retryable synthesis failure.
func NewTransientSpeechError(err error) *SpeechError {
	return &SpeechError{Kind: SpeechTransient, Err: err}
}

// NewPermanentSpeechError wraps err as a non-retryable synthesis failure.
func NewPermanentSpeechError(err error) *SpeechError {
	return &SpeechError{Kind: SpeechPermanent, Err: err}
}

// IsTransient reports whether err is a retryable synthesis failure.
// Unclassified errors are treated as transient so that network-level
// failures get retried.
func IsTransient(err error) bool {
	var se *SpeechError
	if errors.As(err, &se) {
		return se.Kind == SpeechTransient
	}
	return true
}

// IsPermanent reports whether err is a non-retryable synthesis failure.
func IsPermanent(err error) bool {
	var se *SpeechError
	if errors.As(err, &se) {
		return se.Kind == SpeechPermanent
	}
	return false
}
