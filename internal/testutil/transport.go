package testutil

import (
	"context"
	"errors"
	"net/url"
	"sync"
)

// ScriptedResponse is one canned answer of a ScriptedTransport.
type ScriptedResponse struct {
	Body     string
	Location string
	Err      error
}

// RecordedCall is a call seen by a ScriptedTransport.
type RecordedCall struct {
	Endpoint string
	Params   url.Values
	Redirect bool
}

// ScriptedTransport answers calls from a queue in order and records them.
// CallFunc / RedirectFunc, when set, take precedence over the queue.
type ScriptedTransport struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     []RecordedCall

	CallFunc     func(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
	RedirectFunc func(ctx context.Context, endpoint string, params url.Values) (string, error)
}

var ErrScriptExhausted = errors.New("scripted transport: no response left")

func NewScriptedTransport(responses ...ScriptedResponse) *ScriptedTransport {
	return &ScriptedTransport{responses: responses}
}

func (s *ScriptedTransport) Call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	s.record(endpoint, params, false)
	if s.CallFunc != nil {
		return s.CallFunc(ctx, endpoint, params)
	}
	r, err := s.next()
	if err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return []byte(r.Body), nil
}

func (s *ScriptedTransport) Redirect(ctx context.Context, endpoint string, params url.Values) (string, error) {
	s.record(endpoint, params, true)
	if s.RedirectFunc != nil {
		return s.RedirectFunc(ctx, endpoint, params)
	}
	r, err := s.next()
	if err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Location, nil
}

// Calls returns the calls recorded so far.
func (s *ScriptedTransport) Calls() []RecordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *ScriptedTransport) record(endpoint string, params url.Values, redirect bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(url.Values, len(params))
	for k, v := range params {
		cp[k] = append([]string(nil), v...)
	}
	s.calls = append(s.calls, RecordedCall{Endpoint: endpoint, Params: cp, Redirect: redirect})
}

func (s *ScriptedTransport) next() (ScriptedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return ScriptedResponse{}, ErrScriptExhausted
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}
