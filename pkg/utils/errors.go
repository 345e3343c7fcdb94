package utils

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrEmptyWindow      = errors.New("empty date window")
	ErrInsufficientRows = errors.New("insufficient rows")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsorted         = errors.New("dataset not in chronological order")
)

// Pipeline stages reported in errors and logs.
const (
	StageRebalance = "rebalance"
	StageTrain     = "train"
)

// AppError identifies the stage and the precondition that failed.
type AppError struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func NewAppError(stage, code string, err error, message string, details ...string) *AppError {
	appErr := &AppError{
		Stage:   stage,
		Code:    code,
		Message: message,
		Err:     err,
	}
	if len(details) > 0 {
		appErr.Details = details[0]
	}
	return appErr
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s - %s", e.Stage, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Stage, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// SchemaMismatch reports a required column that is absent.
func SchemaMismatch(stage, column string) *AppError {
	return NewAppError(stage, ErrCodeSchemaMismatch, ErrSchemaMismatch,
		"required column missing", fmt.Sprintf("column=%s", column))
}

// EmptyWindow reports a date window that selected zero rows.
func EmptyWindow(start, end string) *AppError {
	return NewAppError(StageTrain, ErrCodeEmptyWindow, ErrEmptyWindow,
		"no rows in window", fmt.Sprintf("start=%s end=%s", start, end))
}

// IOFailure tags a filesystem or codec error with the stage it broke. err
// stays reachable through errors.Is / errors.As.
func IOFailure(stage, message, path string, err error) *AppError {
	return NewAppError(stage, ErrCodeIO, err,
		fmt.Sprintf("%s: %v", message, err), fmt.Sprintf("path=%s", path))
}

// Common error codes
const (
	ErrCodeSchemaMismatch   = "SCHEMA_MISMATCH"
	ErrCodeEmptyWindow      = "EMPTY_WINDOW"
	ErrCodeInsufficientRows = "INSUFFICIENT_ROWS"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnsorted         = "UNSORTED_DATASET"
	ErrCodeIO               = "IO_ERROR"
)
