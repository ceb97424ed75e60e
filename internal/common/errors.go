package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Stages wrap these so callers can decide between degrading and aborting.
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoInput: the caller provided no inquiry text; the pipeline never runs.
	ErrNoInput = errors.New("no inquiry text provided")

	// ErrNoJSONFound and ErrMalformedJSON are the two extraction failure kinds.
	ErrNoJSONFound   = errors.New("no json object found in completion")
	ErrMalformedJSON = errors.New("malformed json object in completion")

	// ErrDocumentUnreadable degrades to sentinel document text.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrSearchUnavailable degrades a single field to the sentinel.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrFetchFailed degrades a search bundle to snippet-only text.
	ErrFetchFailed = errors.New("page fetch failed")
)

// Error codes carried by AppError.
const (
	CodeConfig           = "CONFIG_ERROR"
	CodeNoInput          = "NO_INPUT"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeInternal         = "INTERNAL"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsExtractionFailure reports whether err is either extraction failure kind.
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrNoJSONFound) || errors.Is(err, ErrMalformedJSON)
}

// ToStatus maps an error to a gRPC status error with a user-facing message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case IsExtractionFailure(err):
		return status.Error(codes.FailedPrecondition, "failed to process the inquiry content: "+err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return InternalErrorf("an error occurred while processing: %v", err)
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
