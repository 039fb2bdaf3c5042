// Package yamoney is a client for the Yandex.Money wallet API.
//
// Every call is a form-encoded POST whose JSON answer is either the expected
// payload or {"error": "..."}. Failures are *Error values that match one of
// ErrNetwork, ErrParse, ErrRemoteRejected or ErrAuthorizationCallback with
// errors.Is.
//
// Tokens are obtained with an Authorizer and used by a Client:
//
//	a := yamoney.NewAuthorizer(clientID, redirectURI)
//	token, err := a.Authorize(ctx, []yamoney.Scope{yamoney.ScopeAccountInfo}, getCode)
//
//	c := yamoney.NewClient(token)
//	info, err := c.AccountInfo(ctx)
package yamoney
