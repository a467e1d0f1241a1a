package common

import (
	"errors"
	"fmt"
)

// ErrorCode classifies analysis failures
type ErrorCode string

const (
	ErrCodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrCodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"
)

// Sentinels matched by errors.Is against any *AnalysisError of the same code
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInsufficientData = errors.New("insufficient data")
)

// AnalysisError is returned by every analyzer entry point
type AnalysisError struct {
	Code    ErrorCode `json:"code"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AnalysisError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's code
func (e *AnalysisError) Is(target error) bool {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return target == ErrInvalidArgument
	case ErrCodeInsufficientData:
		return target == ErrInsufficientData
	}
	return false
}

// InvalidArgument creates an ErrCodeInvalidArgument error for operation op
func InvalidArgument(op, format string, args ...any) *AnalysisError {
	return &AnalysisError{Code: ErrCodeInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

// InsufficientData creates an ErrCodeInsufficientData error for operation op
func InsufficientData(op, format string, args ...any) *AnalysisError {
	return &AnalysisError{Code: ErrCodeInsufficientData, Op: op, Message: fmt.Sprintf(format, args...)}
}

// ValidateSamples checks the arguments shared by every waveform entry point
func ValidateSamples(op string, samples []float64, samplingPeriod float64) error {
	if len(samples) == 0 {
		return InvalidArgument(op, "samples must not be empty")
	}
	if !AllFinite(samples) {
		return InvalidArgument(op, "samples must be finite")
	}
	if !IsFinite(samplingPeriod) || samplingPeriod <= 0 {
		return InvalidArgument(op, "sampling period must be positive and finite, got %v", samplingPeriod)
	}
	return nil
}
