package model

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a pipeline failure class. Kinds are stable wire
// values: the HTTP layer maps them to status codes and clients switch
// on them.
type ErrorKind string

const (
	KindUnsupportedFormat    ErrorKind = "UnsupportedFormat"
	KindFileTooLarge         ErrorKind = "FileTooLarge"
	KindTooManyPages         ErrorKind = "TooManyPages"
	KindExtractionTimeout    ErrorKind = "ExtractionTimeout"
	KindExternalServiceError ErrorKind = "ExternalServiceError"
	KindMalformedModelOutput ErrorKind = "MalformedModelOutput"
	KindRequestCancelled     ErrorKind = "RequestCancelled"
	KindRequestTimeout       ErrorKind = "RequestTimeout"
	KindInternal             ErrorKind = "InternalError"
)

// PipelineError is the typed failure returned by pipeline stages.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewError creates a PipelineError without a cause.
func NewError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// WrapError creates a PipelineError wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err, or KindInternal if err is not
// a PipelineError.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// Detail converts err into the wire error object.
func Detail(err error) *ErrorDetail {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return &ErrorDetail{Kind: string(pe.Kind), Message: pe.Message}
	}
	return &ErrorDetail{Kind: string(KindInternal), Message: err.Error()}
}
