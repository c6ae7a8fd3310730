package entur

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RequestError
		expected string
	}{
		{
			name:     "bad status",
			err:      &RequestError{Kind: FailureProtocol, StatusCode: 503, Status: "503 Service Unavailable"},
			expected: "entur: unexpected status 503 Service Unavailable",
		},
		{
			name:     "malformed body without status",
			err:      &RequestError{Kind: FailureProtocol, Err: errors.New("decoding data: unexpected end of JSON input")},
			expected: "entur: malformed response: decoding data: unexpected end of JSON input",
		},
		{
			name:     "malformed body with status",
			err:      &RequestError{Kind: FailureProtocol, StatusCode: 200, Status: "200 OK", Err: errors.New("data is null")},
			expected: "entur: 200 OK: data is null",
		},
		{
			name:     "graphql errors",
			err:      &RequestError{Kind: FailureQuery, Errors: []GraphQLError{{Message: "a"}, {Message: "b"}}},
			expected: "entur: graphql errors: a; b",
		},
		{
			name:     "transport",
			err:      &RequestError{Kind: FailureTransport, Err: context.DeadlineExceeded},
			expected: "entur: request failed: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{"nil", nil, FailureNone},
		{"plain", errors.New("boom"), FailureNone},
		{"wrapped request error", fmt.Errorf("update: %w", &RequestError{Kind: FailureQuery}), FailureQuery},
		{"normalization", &NormalizationError{Section: "quays", Err: ErrMissingField}, FailureNormalization},
		{"field", &FieldError{Field: "id", Err: ErrMissingField}, FailureNormalization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}
