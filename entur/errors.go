package entur

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why a request or a record could not be used.
type FailureKind int

const (
	// FailureNone is returned by KindOf for nil or unclassified errors.
	FailureNone FailureKind = iota
	// FailureTransport is a timeout, cancellation or connection error.
	FailureTransport
	// FailureProtocol is a non-2xx status or a body that is not a GraphQL response.
	FailureProtocol
	// FailureQuery is a response carrying a top-level GraphQL errors array.
	FailureQuery
	// FailureNormalization is a record missing a required field.
	FailureNormalization
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureProtocol:
		return "protocol"
	case FailureQuery:
		return "query"
	case FailureNormalization:
		return "normalization"
	default:
		return "none"
	}
}

var (
	// ErrEmptyQuery is returned when neither stops nor quays are configured.
	ErrEmptyQuery = errors.New("no stops or quays to query")
	// ErrMissingField marks an absent or mistyped field in a response record.
	ErrMissingField = errors.New("missing field")
	// ErrQuaysAlreadyExpanded is returned by a second ExpandQuays call.
	ErrQuaysAlreadyExpanded = errors.New("quays already expanded")
)

// GraphQLError is one entry of a response's top-level errors array.
type GraphQLError struct {
	Message string         `json:"message"`
	Path    []any          `json:"path,omitempty"`
	Extra   map[string]any `json:"extensions,omitempty"`
}

// RequestError is returned by Transport.Execute and by the Service when a
// request could not produce usable data.
type RequestError struct {
	Kind       FailureKind
	StatusCode int
	Status     string
	Errors     []GraphQLError
	Err        error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case FailureProtocol:
		if e.Err != nil && e.Status == "" {
			return fmt.Sprintf("entur: malformed response: %v", e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("entur: %s: %v", e.Status, e.Err)
		}
		return fmt.Sprintf("entur: unexpected status %s", e.Status)
	case FailureQuery:
		msgs := make([]string, 0, len(e.Errors))
		for _, ge := range e.Errors {
			msgs = append(msgs, ge.Message)
		}
		return "entur: graphql errors: " + strings.Join(msgs, "; ")
	default:
		return fmt.Sprintf("entur: request failed: %v", e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FieldError reports a call or place field that could not be read.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NormalizationError reports a place record that was skipped.
type NormalizationError struct {
	Section string
	Index   int
	Err     error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	var normErr *NormalizationError
	if errors.As(err, &normErr) {
		return FailureNormalization
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return FailureNormalization
	}
	return FailureNone
}
