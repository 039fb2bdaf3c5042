package yamoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the origin every endpoint is resolved against.
const DefaultBaseURL = "https://money.yandex.ru"

// Transport issues a single form-encoded POST per call.
type Transport interface {
	// Call posts params to endpoint and returns the raw response body.
	Call(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
	// Redirect posts params to endpoint without following redirects and
	// returns the Location of the 302 response.
	Redirect(ctx context.Context, endpoint string, params url.Values) (string, error)
}

// HTTPTransport implements Transport over net/http. It is immutable after
// construction and safe for concurrent use.
type HTTPTransport struct {
	client   *http.Client
	noFollow *http.Client
	baseURL  string
	token    string
	logger   zerolog.Logger
}

type TransportOption func(*HTTPTransport)

func WithBaseURL(baseURL string) TransportOption {
	return func(t *HTTPTransport) { t.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the client used for calls. Timeouts and round trippers
// configured on it apply to every request.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithToken attaches a bearer credential to every Call.
func WithToken(token string) TransportOption {
	return func(t *HTTPTransport) { t.token = token }
}

func WithTransportLogger(l zerolog.Logger) TransportOption {
	return func(t *HTTPTransport) { t.logger = l }
}

func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client:  http.DefaultClient,
		baseURL: DefaultBaseURL,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(t)
	}

	noFollow := *t.client
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	t.noFollow = &noFollow

	return t
}

func (t *HTTPTransport) Call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := t.newRequest(ctx, endpoint, params)
	if err != nil {
		return nil, networkError(endpoint, 0, "", err)
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	t.logger.Trace().
		Str("endpoint", endpoint).
		Str("params", params.Encode()).
		Msg("Sending request")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, networkError(endpoint, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(endpoint, resp.StatusCode, "", err)
	}

	t.logger.Trace().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Bytes("body", body).
		Msg("Received response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, networkError(endpoint, resp.StatusCode, string(body), nil)
	}

	return body, nil
}

func (t *HTTPTransport) Redirect(ctx context.Context, endpoint string, params url.Values) (string, error) {
	req, err := t.newRequest(ctx, endpoint, params)
	if err != nil {
		return "", networkError(endpoint, 0, "", err)
	}

	t.logger.Trace().
		Str("endpoint", endpoint).
		Str("params", params.Encode()).
		Msg("Sending redirect request")

	resp, err := t.noFollow.Do(req)
	if err != nil {
		return "", networkError(endpoint, 0, "", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return "", networkError(endpoint, resp.StatusCode, "",
			fmt.Errorf("unexpected status %q, expected redirect", resp.Status))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", networkError(endpoint, resp.StatusCode, "", fmt.Errorf("redirect without Location header"))
	}

	return location, nil
}

func (t *HTTPTransport) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/"+endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}
