package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the pipeline.
type ErrorCode string

// Input error codes. Input errors mean a strategy cannot run with the
// inputs it was given; the fallback chain moves on to the next strategy.
const (
	ErrInsufficientReferences ErrorCode = "INPUT_INSUFFICIENT_REFERENCES"
	ErrMalformedParams        ErrorCode = "INPUT_MALFORMED_PARAMS"
)

// Strategy failure codes, one per synthesis stage.
const (
	ErrFeatureExtraction   ErrorCode = "STRATEGY_FEATURE_EXTRACTION"
	ErrReconstruction      ErrorCode = "STRATEGY_RECONSTRUCTION"
	ErrTextureProjection   ErrorCode = "STRATEGY_TEXTURE_PROJECTION"
	ErrMorphologySynthesis ErrorCode = "STRATEGY_MORPHOLOGY_SYNTHESIS"
	ErrDepthEstimation     ErrorCode = "STRATEGY_DEPTH_ESTIMATION"
)

// Cache error codes.
const (
	ErrCacheCorruption ErrorCode = "CACHE_CORRUPTION"
)

// Error is a structured pipeline error with code, stage, and metadata.
// No Error ever reaches a Submit caller: the fallback chain absorbs
// every one of them. They exist for logging and strategy handoff.
type Error struct {
	Code      ErrorCode    `json:"code"`
	Message   string       `json:"message"`
	Strategy  StrategyKind `json:"strategy,omitempty"`
	Stage     string       `json:"stage,omitempty"`
	Retryable bool         `json:"retryable"`
	Cause     error        `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewInputError creates an input error for the given strategy.
func NewInputError(code ErrorCode, strategy StrategyKind, message string) *Error {
	return &Error{Code: code, Strategy: strategy, Message: message}
}

// NewStrategyFailure creates a synthesis failure naming the offending stage.
func NewStrategyFailure(code ErrorCode, strategy StrategyKind, stage, message string) *Error {
	return &Error{Code: code, Strategy: strategy, Stage: stage, Message: message, Retryable: true}
}

// WithCause attaches a cause and returns the error for chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// IsInputError reports whether err is an input error.
func IsInputError(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrInsufficientReferences, ErrMalformedParams:
		return true
	}
	return false
}
