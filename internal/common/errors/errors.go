// Package errors provides standardized error handling for the talent engine.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors: rejected before any fetch, never retried.
	ErrCodeInvalidFilterFormat    ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeInvalidExperienceRange ErrorCode = "INVALID_EXPERIENCE_RANGE"
	ErrCodeInvalidPagination      ErrorCode = "INVALID_PAGINATION"
	ErrCodeInvalidDocument        ErrorCode = "INVALID_DOCUMENT"
	ErrCodeInvalidSkillRef        ErrorCode = "INVALID_SKILL_REF"

	// Collaborator errors: the store or parser failed. Retry policy belongs
	// to the collaborator's own client, not this core.
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout         ErrorCode = "QUERY_TIMEOUT"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSignalFetchFailed    ErrorCode = "SIGNAL_FETCH_FAILED"
	ErrCodeCatalogFetchFailed   ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeDocumentParseFailed  ErrorCode = "DOCUMENT_PARSE_FAILED"

	// Commit errors (CV merge).
	ErrCodeRecordInsertFailed ErrorCode = "RECORD_INSERT_FAILED"
)

// Kind distinguishes the three failure classes the engine can surface.
type Kind string

const (
	KindInput        Kind = "input"
	KindCollaborator Kind = "collaborator"
	KindCommit       Kind = "commit"
)

// StandardError is a structured engine error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidFilterError marks a malformed filter set, surfaced before any fetch.
func NewInvalidFilterError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Kind:      KindInput,
		Message:   "Malformed search filter set",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidExperienceRangeError rejects bounds where min exceeds max.
func NewInvalidExperienceRangeError(min, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidExperienceRange,
		Kind:      KindInput,
		Message:   "Experience range minimum exceeds maximum",
		Details:   fmt.Sprintf("min=%d max=%d", min, max),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDocumentError marks a parser payload that failed schema validation.
func NewInvalidDocumentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDocument,
		Kind:      KindInput,
		Message:   "Parsed document failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollaboratorError wraps a store or parser failure. An empty result set
// is not a collaborator error; only an actual fetch failure is.
func NewCollaboratorError(code ErrorCode, message string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Kind:      KindCollaborator,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 3. Partial Commit Errors
// ==========================

// PartialCommitError reports a CV merge commit where some entity kinds
// committed and others failed. Committed kinds' inserts stay intact; the
// caller decides whether to re-offer the failed kinds.
type PartialCommitError struct {
	Committed []string
	Failed    map[string]error
}

func (e *PartialCommitError) Error() string {
	kinds := make([]string, 0, len(e.Failed))
	for k := range e.Failed {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return fmt.Sprintf("merge commit failed for kinds [%s], committed [%s]",
		strings.Join(kinds, ", "), strings.Join(e.Committed, ", "))
}

// FailedKinds returns the failed kind names in stable order.
func (e *PartialCommitError) FailedKinds() []string {
	kinds := make([]string, 0, len(e.Failed))
	for k := range e.Failed {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ==========================
// 4. Classification Helpers
// ==========================

// IsInput reports whether err is an input error (caller mistake, never retried).
func IsInput(err error) bool {
	return isKind(err, KindInput)
}

// IsCollaborator reports whether err is a store/parser failure, as opposed to
// a valid zero-result outcome.
func IsCollaborator(err error) bool {
	return isKind(err, KindCollaborator)
}

func isKind(err error, kind Kind) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
