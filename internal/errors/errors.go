// Package errors provides unified error handling across pocket-embed.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the foundation for error handling in every layer (model, validation,
// storage, webhook, CLI). It standardizes how failures are represented so that the
// CLI and the TUI can present them consistently.
//
// KEY RESPONSIBILITIES:
// - Define the error codes of the embed taxonomy (capacity, empty embed, invalid URL,
//   submission outcomes, store lookups, lenient parse skips)
// - Provide the structured AppError type with severity, category and context
// - Mark which failures a caller may reasonably retry (the core itself never retries)
//
// INTEGRATION POINTS:
// - internal/models/embed.go: AddField returns CAPACITY_EXCEEDED
// - internal/validation/validator.go: ValidationResult.ToAppError() converts fatal violations
// - internal/storage/storage.go: NOT_FOUND, STORAGE_FAILURE and FILE_CORRUPTED
// - internal/webhook/submitter.go: Outcome.Err() maps submission outcomes to AppErrors
// - main.go: CLIErrorHandler formats AppErrors for terminal display
//
// USAGE PATTERNS:
// - Create errors: use constructors like CapacityExceededError(), NotFoundError()
// - Wrap errors: use Wrap() to add context to existing errors
// - Check types: use IsCode() or GetAppError() (both see through %w wrapping)
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeEmptyEmbed       ErrorCode = "EMPTY_EMBED"
	ErrCodeInvalidURL       ErrorCode = "INVALID_URL"
	ErrCodeParseSkipped     ErrorCode = "PARSE_SKIPPED"

	// Service errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"

	// Submission errors
	ErrCodeClientRejected   ErrorCode = "CLIENT_REJECTED"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"

	// Command errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeInvalidCommand  ErrorCode = "INVALID_COMMAND"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryService    ErrorCategory = "service"
	CategoryStorage    ErrorCategory = "storage"
	CategoryNetwork    ErrorCategory = "network"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
		Retryable: isRetryable(code),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeCapacityExceeded, ErrCodeEmptyEmbed:
		return CategoryValidation, SeverityWarning
	case ErrCodeInvalidURL, ErrCodeParseSkipped:
		return CategoryValidation, SeverityInfo

	case ErrCodeInternalError:
		return CategoryService, SeverityCritical
	case ErrCodeNotFound:
		return CategoryService, SeverityInfo
	case ErrCodeAlreadyExists:
		return CategoryService, SeverityWarning

	case ErrCodeStorageFailure, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityError

	case ErrCodeClientRejected, ErrCodeTransportFailure:
		return CategoryNetwork, SeverityError
	case ErrCodeRateLimited:
		return CategoryNetwork, SeverityWarning

	case ErrCodeCommandNotFound:
		return CategoryCommand, SeverityInfo
	case ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError

	default:
		return CategorySystem, SeverityError
	}
}

// isRetryable reports whether a caller could retry. Nothing in pocket-embed retries
// on its own.
func isRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimited, ErrCodeTransportFailure, ErrCodeStorageFailure:
		return true
	default:
		return false
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, err.Error())
}

// IsCode reports whether err carries an AppError with the given code
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// Common error constructors for frequently used errors
func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func InvalidInputError(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message)
}

func CapacityExceededError(what string, max int) *AppError {
	return NewAppError(ErrCodeCapacityExceeded, fmt.Sprintf("maximum %d %s allowed", max, what)).
		WithContext("max", max)
}

func EmptyEmbedError() *AppError {
	return NewAppError(ErrCodeEmptyEmbed, "embed has no content to send")
}

func InvalidURLError(field, value string) *AppError {
	return NewAppError(ErrCodeInvalidURL, fmt.Sprintf("%s is not a valid http(s) URL", field)).
		WithContext("value", value)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func CorruptedError(collection string, err error) *AppError {
	return Wrap(err, ErrCodeFileCorrupted, fmt.Sprintf("%s document is corrupted", collection))
}

func CommandNotFoundError(command string) *AppError {
	return NewAppError(ErrCodeCommandNotFound, fmt.Sprintf("Command '%s' not found", command))
}

func InvalidCommandError(command string, reason string) *AppError {
	return NewAppError(ErrCodeInvalidCommand, fmt.Sprintf("Invalid command '%s': %s", command, reason))
}
