package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeRequest is a request received by a FakeAPI.
type FakeRequest struct {
	Path          string
	Authorization string
	ContentType   string
	Form          url.Values
}

// FakeAPI is an httptest server that answers API endpoints with canned
// bodies. Responses queued for a path are served in order; the last one
// repeats.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string][]fakeResponse
	requests  []FakeRequest
}

type fakeResponse struct {
	status   int
	body     string
	location string
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{responses: make(map[string][]fakeResponse)}

	r := chi.NewRouter()
	r.Post("/api/{method}", f.handle)
	r.Post("/oauth/{method}", f.handle)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to point a transport at.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Respond queues a body with the given status for path, e.g. "/api/account-info".
func (f *FakeAPI) Respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = append(f.responses[path], fakeResponse{status: status, body: body})
}

// RespondRedirect queues a 302 to location for path.
func (f *FakeAPI) RespondRedirect(path, location string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = append(f.responses[path], fakeResponse{status: http.StatusFound, location: location})
}

// Requests returns the requests received so far.
func (f *FakeAPI) Requests() []FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	f.requests = append(f.requests, FakeRequest{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Form:          r.PostForm,
	})
	queue := f.responses[r.URL.Path]
	var resp fakeResponse
	switch {
	case len(queue) == 0:
		resp = fakeResponse{status: http.StatusNotFound, body: "no response for " + r.URL.Path}
	case len(queue) == 1:
		resp = queue[0]
	default:
		resp = queue[0]
		f.responses[r.URL.Path] = queue[1:]
	}
	f.mu.Unlock()

	if resp.location != "" {
		w.Header().Set("Location", resp.location)
	}
	if strings.HasPrefix(strings.TrimSpace(resp.body), "{") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
