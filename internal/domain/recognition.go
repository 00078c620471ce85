package domain

import (
	"context"
	"errors"
	"fmt"
)

// RecognitionErrorKind classifies why a listening session produced no transcript.
type RecognitionErrorKind string

const (
	RecognitionNoSpeech           RecognitionErrorKind = "no-speech"
	RecognitionPermissionDenied   RecognitionErrorKind = "permission-denied"
	RecognitionNetworkUnavailable RecognitionErrorKind = "network-unavailable"
	RecognitionAborted            RecognitionErrorKind = "aborted"
	RecognitionOther              RecognitionErrorKind = "other"
)

// RecognitionError tags a capture or provider failure with its kind.
type RecognitionError struct {
	Kind RecognitionErrorKind
	Err  error
}

func NewRecognitionError(kind RecognitionErrorKind, err error) *RecognitionError {
	return &RecognitionError{Kind: kind, Err: err}
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// RecognitionErrorKindOf maps any error to a recognition error kind.
func RecognitionErrorKindOf(err error) RecognitionErrorKind {
	if err == nil {
		return RecognitionOther
	}
	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		return recErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return RecognitionAborted
	}
	return RecognitionOther
}

// Reason maps a recognition error kind onto a session transition reason.
func (k RecognitionErrorKind) Reason() SessionStateReason {
	switch k {
	case RecognitionNoSpeech:
		return SessionReasonNoSpeech
	case RecognitionPermissionDenied:
		return SessionReasonPermissionDenied
	case RecognitionNetworkUnavailable:
		return SessionReasonNetworkUnavailable
	case RecognitionAborted:
		return SessionReasonAborted
	default:
		return SessionReasonRecognitionFailed
	}
}
