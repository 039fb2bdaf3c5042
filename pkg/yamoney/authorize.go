package yamoney

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthState is a step of the authorization exchange.
type AuthState int

const (
	StateUnauthorized AuthState = iota
	StateAwaitingRedirect
	StateAwaitingExchange
	StateAuthorized
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthorized:
		return "unauthorized"
	case StateAwaitingRedirect:
		return "awaiting_redirect"
	case StateAwaitingExchange:
		return "awaiting_exchange"
	case StateAuthorized:
		return "authorized"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

// CodeFunc receives the authorization page address and returns the one-time
// code the user obtained from it.
type CodeFunc func(ctx context.Context, redirectURL string) (string, error)

// Authorizer obtains permanent tokens for an application.
type Authorizer struct {
	transport   Transport
	logger      zerolog.Logger
	clientID    string
	redirectURI string
	instanceID  func() string
}

func NewAuthorizer(clientID, redirectURI string, opts ...Option) *Authorizer {
	o := buildOptions("", opts)
	return &Authorizer{
		transport:   o.transport,
		logger:      o.logger,
		clientID:    clientID,
		redirectURI: redirectURI,
		instanceID:  func() string { return uuid.New().String() },
	}
}

// Authorize runs the three-legged exchange and returns the permanent token.
// Scopes are sent space-joined in declaration order regardless of the order
// given. If getCode fails the token exchange is not attempted.
func (a *Authorizer) Authorize(ctx context.Context, scopes []Scope, getCode CodeFunc) (string, error) {
	state := StateUnauthorized
	advance := func(next AuthState) {
		a.logger.Debug().Stringer("from", state).Stringer("to", next).Msg("Authorization state")
		state = next
	}

	advance(StateAwaitingRedirect)
	authorizeParams := url.Values{
		"client_id":     {a.clientID},
		"response_type": {"code"},
		"redirect_uri":  {a.redirectURI},
		"scope":         {joinSet(scopes, scopeNames[:])},
		"instance_name": {a.instanceID()},
	}
	redirectURL, err := a.transport.Redirect(ctx, EndpointAuthorize, authorizeParams)
	if err != nil {
		return "", asTransportError(EndpointAuthorize, err)
	}

	code, err := getCode(ctx, redirectURL)
	if err != nil {
		return "", &Error{Kind: KindAuthorizationCallback, Err: err}
	}

	advance(StateAwaitingExchange)
	token, err := call[tokenExchange](ctx, a.transport, EndpointToken, map[string]string{
		"code":         code,
		"client_id":    a.clientID,
		"grant_type":   "authorization_code",
		"redirect_uri": a.redirectURI,
	})
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", parseError(EndpointToken, fmt.Errorf("access_token missing"))
	}

	advance(StateAuthorized)
	return token.AccessToken, nil
}

// CodeFromRedirect extracts the code query parameter from the URL the
// authorization page redirected the user to.
func CodeFromRedirect(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse redirect URL: %w", err)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", ErrCodeNotFound
	}
	return code, nil
}
