package yamoney

import (
	"errors"
	"fmt"
)

var (
	// Call failure kinds, matched with errors.Is against an *Error.
	ErrNetwork               = errors.New("network failure")
	ErrParse                 = errors.New("malformed response")
	ErrRemoteRejected        = errors.New("request rejected by remote")
	ErrAuthorizationCallback = errors.New("authorization callback failed")
	ErrInvalidArgument       = errors.New("invalid argument")

	ErrPaymentRequestSent = errors.New("payment request already sent")
	ErrCodeNotFound       = errors.New("authorization code not found in redirect URL")
)

// Kind classifies an *Error.
type Kind string

const (
	KindNetwork               Kind = "network"
	KindParse                 Kind = "parse"
	KindRemote                Kind = "remote"
	KindAuthorizationCallback Kind = "authorization_callback"
	KindInvalidArgument       Kind = "invalid_argument"
)

// Error is returned by every API call that fails. Endpoint is empty for
// failures that happen outside a transport call (the authorization callback).
type Error struct {
	Kind        Kind
	Endpoint    string
	StatusCode  int
	Description string
	Err         error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s: %s", e.Endpoint, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Description != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Description)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrParse:
		return e.Kind == KindParse
	case ErrRemoteRejected:
		return e.Kind == KindRemote
	case ErrAuthorizationCallback:
		return e.Kind == KindAuthorizationCallback
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	}
	return false
}

func networkError(endpoint string, status int, body string, err error) *Error {
	return &Error{
		Kind:        KindNetwork,
		Endpoint:    endpoint,
		StatusCode:  status,
		Description: body,
		Err:         err,
	}
}

func parseError(endpoint string, err error) *Error {
	return &Error{Kind: KindParse, Endpoint: endpoint, Err: err}
}

func remoteError(endpoint, description string) *Error {
	return &Error{Kind: KindRemote, Endpoint: endpoint, Description: description}
}

func invalidArgument(endpoint, description string) *Error {
	return &Error{Kind: KindInvalidArgument, Endpoint: endpoint, Description: description}
}

// withEndpoint fills in the endpoint on an *Error produced without one.
func withEndpoint(err error, endpoint string) error {
	var e *Error
	if errors.As(err, &e) && e.Endpoint == "" {
		e.Endpoint = endpoint
	}
	return err
}
