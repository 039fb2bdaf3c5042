package yamoney

import (
	"context"
	"sync/atomic"
)

// Sender sends a prepared payment request.
type Sender interface {
	Send(ctx context.Context) (*RequestPaymentResponse, error)
}

// PaymentRequest is an unsent api/request-payment call. It can be sent once.
type PaymentRequest struct {
	transport Transport
	params    map[string]string
	sent      atomic.Bool
	// err is returned by Send in place of a call when the request could
	// not be built.
	err error
}

var (
	_ Sender = (*PaymentRequest)(nil)
	_ Sender = (*TestPaymentRequest)(nil)
)

// Params returns a copy of the parameters that Send will post.
func (r *PaymentRequest) Params() map[string]string {
	out := make(map[string]string, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// Set adds or overrides a parameter before sending.
func (r *PaymentRequest) Set(key, value string) *PaymentRequest {
	r.params[key] = value
	return r
}

func (r *PaymentRequest) Send(ctx context.Context) (*RequestPaymentResponse, error) {
	return r.send(ctx, nil)
}

// send posts the request parameters merged with extra. The stored
// parameters are left untouched.
func (r *PaymentRequest) send(ctx context.Context, extra map[string]string) (*RequestPaymentResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	if !r.sent.CompareAndSwap(false, true) {
		return nil, ErrPaymentRequestSent
	}
	params := r.Params()
	for k, v := range extra {
		params[k] = v
	}
	return call[RequestPaymentResponse](ctx, r.transport, EndpointRequestPayment, params)
}

// TestPaymentRequest sends its request as a dry run: the API validates it but
// moves no money. TestResult, when set, asks the API to answer with that
// error code instead of success.
type TestPaymentRequest struct {
	*PaymentRequest
	TestResult string
}

func NewTestPaymentRequest(r *PaymentRequest) *TestPaymentRequest {
	return &TestPaymentRequest{PaymentRequest: r}
}

func (r *TestPaymentRequest) Send(ctx context.Context) (*RequestPaymentResponse, error) {
	extra := map[string]string{"test_payment": "true"}
	if r.TestResult != "" {
		extra["test_result"] = r.TestResult
	}
	return r.PaymentRequest.send(ctx, extra)
}
