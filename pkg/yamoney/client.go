package yamoney

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Endpoint paths, relative to the base URL. Transport implementations receive
// these as the endpoint argument.
const (
	EndpointAccountInfo      = "api/account-info"
	EndpointOperationHistory = "api/operation-history"
	EndpointOperationDetails = "api/operation-details"
	EndpointRequestPayment   = "api/request-payment"
	EndpointProcessPayment   = "api/process-payment"
	EndpointRevoke           = "api/revoke"
	EndpointAuthorize        = "oauth/authorize"
	EndpointToken            = "oauth/token"
)

// API is the set of authorized operations.
type API interface {
	AccountInfo(ctx context.Context) (*AccountInfo, error)
	OperationHistory(ctx context.Context, filter HistoryFilter) iter.Seq2[Operation, error]
	OperationDetails(ctx context.Context, operationID string) (*OperationDetails, error)
	RequestShopPayment(patternID string, params map[string]string) *PaymentRequest
	RequestTransfer(to UserID, amount RequestAmount, opts TransferOptions) *PaymentRequest
	RequestMobilePayment(phone PhoneNumber, amount decimal.Decimal) *PaymentRequest
	ProcessPayment(ctx context.Context, requestID string, source MoneySource) (*ProcessPaymentResponse, error)
	RevokeToken(ctx context.Context) error
}

type options struct {
	transport Transport
	topts     []TransportOption
	logger    zerolog.Logger
}

type Option func(*options)

// WithTransport replaces the HTTP transport. Transport options are ignored
// when it is set.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

func WithTransportOptions(opts ...TransportOption) Option {
	return func(o *options) { o.topts = append(o.topts, opts...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(token string, opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.transport == nil {
		topts := []TransportOption{WithTransportLogger(o.logger)}
		if token != "" {
			topts = append(topts, WithToken(token))
		}
		o.transport = NewHTTPTransport(append(topts, o.topts...)...)
	}
	return o
}

// Client performs authorized calls with a permanent token.
type Client struct {
	transport Transport
	logger    zerolog.Logger
}

var _ API = (*Client)(nil)

func NewClient(token string, opts ...Option) *Client {
	o := buildOptions(token, opts)
	return &Client{transport: o.transport, logger: o.logger}
}

func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	return call[AccountInfo](ctx, c.transport, EndpointAccountInfo, nil)
}

func (c *Client) OperationDetails(ctx context.Context, operationID string) (*OperationDetails, error) {
	return call[OperationDetails](ctx, c.transport, EndpointOperationDetails, map[string]string{
		"operation_id": operationID,
	})
}

// ProcessPayment confirms a request. A nil source fails with ErrInvalidArgument
// without a call.
func (c *Client) ProcessPayment(ctx context.Context, requestID string, source MoneySource) (*ProcessPaymentResponse, error) {
	if source == nil {
		return nil, invalidArgument(EndpointProcessPayment, "money source is required")
	}
	params := map[string]string{"request_id": requestID}
	source.apply(params)
	return call[ProcessPaymentResponse](ctx, c.transport, EndpointProcessPayment, params)
}

// RevokeToken invalidates the client's token. The API answers a revoked or
// unknown token with HTTP 401, reported as ErrNetwork.
func (c *Client) RevokeToken(ctx context.Context) error {
	if _, err := c.transport.Call(ctx, EndpointRevoke, url.Values{}); err != nil {
		return asTransportError(EndpointRevoke, err)
	}
	c.logger.Debug().Msg("Token revoked")
	return nil
}

func (c *Client) RequestShopPayment(patternID string, params map[string]string) *PaymentRequest {
	p := make(map[string]string, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p["pattern_id"] = patternID
	return c.newPaymentRequest(p)
}

// TransferOptions holds the optional p2p parameters. Zero values are not sent.
type TransferOptions struct {
	Comment       string
	Message       string
	Label         string
	CodePro       bool
	HoldForPickup bool
	// ExpirePeriod is the number of days the recipient has to accept a
	// protected or held transfer.
	ExpirePeriod uint32
}

// RequestTransfer prepares a p2p transfer. A nil recipient or amount yields a
// request whose Send fails with ErrInvalidArgument.
func (c *Client) RequestTransfer(to UserID, amount RequestAmount, opts TransferOptions) *PaymentRequest {
	switch {
	case to == nil:
		return c.invalidPaymentRequest("recipient is required")
	case amount == nil:
		return c.invalidPaymentRequest("amount is required")
	}

	p := map[string]string{
		"pattern_id": "p2p",
		"to":         to.String(),
	}
	key, value := amount.param()
	p[key] = value.String()

	if opts.Comment != "" {
		p["comment"] = opts.Comment
	}
	if opts.Message != "" {
		p["message"] = opts.Message
	}
	if opts.Label != "" {
		p["label"] = opts.Label
	}
	if opts.CodePro {
		p["codepro"] = "true"
	}
	if opts.HoldForPickup {
		p["hold_for_pickup"] = "true"
	}
	if opts.ExpirePeriod > 0 {
		p["expire_period"] = strconv.FormatUint(uint64(opts.ExpirePeriod), 10)
	}

	return c.newPaymentRequest(p)
}

func (c *Client) RequestMobilePayment(phone PhoneNumber, amount decimal.Decimal) *PaymentRequest {
	return c.newPaymentRequest(map[string]string{
		"pattern_id":   "phone-topup",
		"phone-number": phone.Digits(),
		"amount":       amount.String(),
	})
}

func (c *Client) invalidPaymentRequest(description string) *PaymentRequest {
	r := c.newPaymentRequest(map[string]string{})
	r.err = invalidArgument(EndpointRequestPayment, description)
	return r
}

func (c *Client) newPaymentRequest(params map[string]string) *PaymentRequest {
	return &PaymentRequest{transport: c.transport, params: params}
}

func call[T any](ctx context.Context, t Transport, endpoint string, params map[string]string) (*T, error) {
	body, err := t.Call(ctx, endpoint, toValues(params))
	if err != nil {
		return nil, asTransportError(endpoint, err)
	}

	env, err := DecodeEnvelope[T](body)
	if err != nil {
		return nil, withEndpoint(err, endpoint)
	}

	v, err := env.Result()
	if err != nil {
		return nil, withEndpoint(err, endpoint)
	}
	return v, nil
}

// asTransportError classifies errors from foreign Transport implementations
// as network failures.
func asTransportError(endpoint string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return withEndpoint(err, endpoint)
	}
	return networkError(endpoint, 0, "", err)
}

func toValues(params map[string]string) url.Values {
	v := make(url.Values, len(params))
	for k, p := range params {
		v.Set(k, p)
	}
	return v
}
