// Package errors provides structured error handling for LocaleDrift
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "CONFIG"
	ErrorTypeDocument ErrorType = "DOCUMENT"
	ErrorTypeReport   ErrorType = "REPORT"
	ErrorTypeSystem   ErrorType = "SYSTEM"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes shared between the sentinels below and the places that raise them.
const (
	CodeConfigNotFound    = "CONFIG_NOT_FOUND"
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeConfigRead        = "CONFIG_READ_ERROR"
	CodeConfigUnmarshal   = "CONFIG_UNMARSHAL_ERROR"
	CodeDocumentNotFound  = "DOCUMENT_NOT_FOUND"
	CodeDocumentRead      = "DOCUMENT_UNREADABLE"
	CodeDocumentMalformed = "DOCUMENT_MALFORMED"
	CodeReportFormat      = "REPORT_FORMAT"
	CodeReportWrite       = "REPORT_WRITE"
	CodeSystemPermission  = "SYSTEM_PERMISSION"
)

// LocaleDriftError represents a structured error with context and recovery guidance
type LocaleDriftError struct {
	Type        ErrorType              `json:"type"`
	Severity    Severity               `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Guidance    string                 `json:"guidance,omitempty"`
	Cause       error                  `json:"cause,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *LocaleDriftError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s:%s]", e.Type, e.Code))
	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause error
func (e *LocaleDriftError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error type
func (e *LocaleDriftError) Is(target error) bool {
	if t, ok := target.(*LocaleDriftError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context information to the error
func (e *LocaleDriftError) WithContext(key string, value interface{}) *LocaleDriftError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithGuidance adds recovery guidance to the error
func (e *LocaleDriftError) WithGuidance(guidance string) *LocaleDriftError {
	e.Guidance = guidance
	return e
}

// WithSeverity sets the severity level of the error
func (e *LocaleDriftError) WithSeverity(severity Severity) *LocaleDriftError {
	e.Severity = severity
	return e
}

// WithRecoverable sets whether the error is recoverable
func (e *LocaleDriftError) WithRecoverable(recoverable bool) *LocaleDriftError {
	e.Recoverable = recoverable
	return e
}

// NewError creates a new LocaleDriftError
func NewError(errorType ErrorType, code, message string) *LocaleDriftError {
	return &LocaleDriftError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Severity:    SeverityMedium,
		Recoverable: false,
		Context:     make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with LocaleDrift error context
func WrapError(err error, errorType ErrorType, code, message string) *LocaleDriftError {
	return &LocaleDriftError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Severity:    SeverityMedium,
		Recoverable: false,
		Context:     make(map[string]interface{}),
	}
}

// Sentinels are matched with errors.Is and must never be mutated; raise fresh
// errors with NewError or WrapError using the same type and code.

// Configuration Errors
var (
	ErrConfigNotFound = NewError(ErrorTypeConfig, CodeConfigNotFound, "configuration file not found").
				WithGuidance("Run 'localedrift config init' to create a default configuration file")

	ErrConfigInvalid = NewError(ErrorTypeConfig, CodeConfigInvalid, "configuration file is invalid").
				WithGuidance("Run 'localedrift config validate' to see detailed validation errors")
)

// Document Errors
var (
	ErrDocumentNotFound = NewError(ErrorTypeDocument, CodeDocumentNotFound, "locale file does not exist").
				WithSeverity(SeverityHigh).
				WithGuidance("Check the file path and make sure the locale file exists")

	ErrDocumentUnreadable = NewError(ErrorTypeDocument, CodeDocumentRead, "locale file could not be read").
				WithSeverity(SeverityHigh).
				WithRecoverable(true).
				WithGuidance("Check file permissions and that the path stays inside the working tree")

	// A file caught mid-write by an editor reads as malformed until the
	// write completes.
	ErrDocumentMalformed = NewError(ErrorTypeDocument, CodeDocumentMalformed, "locale file is not a valid structured document").
				WithSeverity(SeverityHigh).
				WithRecoverable(true).
				WithGuidance("Fix the syntax error and make sure the top level of the file is an object")
)

// Report Errors
var (
	ErrReportFormat = NewError(ErrorTypeReport, CodeReportFormat, "unsupported report format").
			WithGuidance("Use one of: text, json, yaml, csv")

	ErrReportWrite = NewError(ErrorTypeReport, CodeReportWrite, "failed to write report").
			WithSeverity(SeverityHigh).
			WithGuidance("Check that the output directory is writable")
)

// System Errors
var (
	ErrSystemPermission = NewError(ErrorTypeSystem, CodeSystemPermission, "insufficient system permissions").
		WithSeverity(SeverityCritical).
		WithGuidance("Run with appropriate permissions or check file/directory access rights")
)

// IsRecoverable reports whether err, or anything it wraps, is a
// LocaleDriftError marked recoverable.
func IsRecoverable(err error) bool {
	for err != nil {
		if lde, ok := err.(*LocaleDriftError); ok && lde.Recoverable {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
