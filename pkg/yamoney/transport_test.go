package yamoney_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/cassiomorais/yamoney/internal/testutil"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Call_PostsFormWithBearer(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("/api/operation-details", http.StatusOK, `{"operation_id":"1"}`)

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(api.URL()+"/"), yamoney.WithToken("secret"))

	body, err := tr.Call(context.Background(), "api/operation-details", url.Values{"operation_id": {"1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation_id":"1"}`, string(body))

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/operation-details", reqs[0].Path)
	assert.Equal(t, "Bearer secret", reqs[0].Authorization)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].ContentType)
	assert.Equal(t, url.Values{"operation_id": {"1"}}, reqs[0].Form)
}

func TestHTTPTransport_Call_WithoutToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("/oauth/token", http.StatusOK, `{"access_token":"x"}`)

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(api.URL()))

	_, err := tr.Call(context.Background(), "oauth/token", url.Values{})
	require.NoError(t, err)
	assert.Empty(t, api.Requests()[0].Authorization)
}

func TestHTTPTransport_Call_ErrorStatus(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("/api/account-info", http.StatusUnauthorized, "invalid_token")

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(api.URL()), yamoney.WithToken("t"))

	_, err := tr.Call(context.Background(), "api/account-info", url.Values{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, yamoney.ErrNetwork))

	var e *yamoney.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusUnauthorized, e.StatusCode)
	assert.Equal(t, "invalid_token", e.Description)
	assert.Equal(t, "api/account-info", e.Endpoint)
}

func TestHTTPTransport_Call_ConnectionFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	base := api.URL()
	api.Server.Close()

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(base))

	_, err := tr.Call(context.Background(), "api/account-info", url.Values{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, yamoney.ErrNetwork))
}

func TestHTTPTransport_Call_CancelledContext(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("/api/account-info", http.StatusOK, `{}`)

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(api.URL()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Call(ctx, "api/account-info", url.Values{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, yamoney.ErrNetwork))
}

func TestHTTPTransport_Redirect_ReturnsLocationWithoutFollowing(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	target := api.URL() + "/api/should-not-be-fetched"
	api.RespondRedirect("/oauth/authorize", target)

	tr := yamoney.NewHTTPTransport(
		yamoney.WithBaseURL(api.URL()),
		yamoney.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)

	location, err := tr.Redirect(context.Background(), "oauth/authorize", url.Values{"client_id": {"app"}})
	require.NoError(t, err)
	assert.Equal(t, target, location)

	reqs := api.Requests()
	require.Len(t, reqs, 1, "redirect must not be followed")
	assert.Equal(t, "app", reqs[0].Form.Get("client_id"))
}

func TestHTTPTransport_Redirect_UnexpectedStatus(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("/oauth/authorize", http.StatusOK, "login page")

	tr := yamoney.NewHTTPTransport(yamoney.WithBaseURL(api.URL()))

	_, err := tr.Redirect(context.Background(), "oauth/authorize", url.Values{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, yamoney.ErrNetwork))
	assert.Contains(t, err.Error(), "unexpected status")
}
