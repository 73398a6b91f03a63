// Package apierror holds the JSON bodies of every non-2xx response.
// Handlers build them from domain errors; driver messages never reach a body.
package apierror

import (
	"sort"
	"strings"
)

// APIError is the body of a plain failure: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

func (e *APIError) Error() string { return e.Detail }

// ValidationError lists the request fields that failed and the rule each broke,
// e.g. {"Amount": "piece_qty"}.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// Error renders the fields in name order so log lines are stable.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return e.Detail + " (" + strings.Join(parts, ", ") + ")"
}
