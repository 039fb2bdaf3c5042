package yamoney

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "network with status and body",
			err:      networkError("api/revoke", 401, "unauthorized", nil),
			expected: "api/revoke: network: status 401: unauthorized",
		},
		{
			name:     "network with cause",
			err:      networkError("api/account-info", 0, "", errors.New("connection refused")),
			expected: "api/account-info: network: connection refused",
		},
		{
			name:     "remote rejection",
			err:      remoteError("api/request-payment", "illegal_param_to"),
			expected: "api/request-payment: remote: illegal_param_to",
		},
		{
			name:     "callback without endpoint",
			err:      &Error{Kind: KindAuthorizationCallback, Err: ErrCodeNotFound},
			expected: "authorization_callback: authorization code not found in redirect URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_IsMatchesOnlyItsKind(t *testing.T) {
	kinds := map[Kind]error{
		KindNetwork:               ErrNetwork,
		KindParse:                 ErrParse,
		KindRemote:                ErrRemoteRejected,
		KindAuthorizationCallback: ErrAuthorizationCallback,
	}

	for kind, sentinel := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Kind: kind})
			for other, otherSentinel := range kinds {
				assert.Equal(t, other == kind, errors.Is(err, otherSentinel),
					"kind %s against %s", kind, other)
			}
			assert.True(t, errors.Is(err, sentinel))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := parseError("api/account-info", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestWithEndpoint_KeepsExisting(t *testing.T) {
	err := withEndpoint(remoteError("api/a", "x"), "api/b")

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "api/a", e.Endpoint)

	err = withEndpoint(remoteError("", "x"), "api/b")
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "api/b", e.Endpoint)
}
