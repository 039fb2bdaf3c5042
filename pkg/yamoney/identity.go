package yamoney

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// UserID identifies a transfer recipient. Implemented by AccountNumber, Email
// and PhoneNumber.
type UserID interface {
	fmt.Stringer
	isUserID()
}

// AccountNumber is a numeric wallet id.
type AccountNumber uint64

func (a AccountNumber) String() string { return strconv.FormatUint(uint64(a), 10) }
func (AccountNumber) isUserID()        {}

type Email string

func (e Email) String() string { return string(e) }
func (Email) isUserID()        {}

// ParseEmail validates s as an email address.
func ParseEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if err := validate.Var(s, "required,email"); err != nil {
		return "", fmt.Errorf("invalid email %q: %w", s, err)
	}
	return Email(s), nil
}

// PhoneNumber is a phone in E.164 form, leading plus included.
type PhoneNumber string

func (p PhoneNumber) String() string { return string(p) }
func (PhoneNumber) isUserID()        {}

// Digits returns the number without the leading plus.
func (p PhoneNumber) Digits() string { return strings.TrimPrefix(string(p), "+") }

// ParsePhoneNumber accepts international numbers with optional separators,
// e.g. "+7 (923) 123-45-67" or "79231234567".
func ParsePhoneNumber(s string) (PhoneNumber, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	if err := validate.Var(cleaned, "required,e164"); err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", s, err)
	}
	return PhoneNumber(cleaned), nil
}

// RequestAmount is either a NetAmount or a TotalAmount.
type RequestAmount interface {
	param() (key string, value decimal.Decimal)
}

// NetAmount is what the recipient receives; the sender pays the fees on top.
type NetAmount struct{ Value decimal.Decimal }

// TotalAmount is charged to the sender; the recipient receives it less fees.
type TotalAmount struct{ Value decimal.Decimal }

func (a NetAmount) param() (string, decimal.Decimal)   { return "amount_due", a.Value }
func (a TotalAmount) param() (string, decimal.Decimal) { return "amount", a.Value }

// MoneySource selects how a payment request is funded. Implemented by Wallet
// and Card.
type MoneySource interface {
	apply(params map[string]string)
}

type Wallet struct{}

func (Wallet) apply(params map[string]string) {
	params["money_source"] = "wallet"
}

// Card is a linked bank card. Secure3D is required when the card payment needs
// 3-D Secure confirmation.
type Card struct {
	ID       string
	CSC      string
	Secure3D *Secure3D
}

type Secure3D struct {
	SuccessURI string
	FailURI    string
}

func (c Card) apply(params map[string]string) {
	params["money_source"] = c.ID
	if c.CSC != "" {
		params["csc"] = c.CSC
	}
	if c.Secure3D != nil {
		params["ext_auth_success_uri"] = c.Secure3D.SuccessURI
		params["ext_auth_fail_uri"] = c.Secure3D.FailURI
	}
}

// Scope is an access right requested during authorization.
type Scope int

const (
	ScopeAccountInfo Scope = iota
	ScopeOperationHistory
	ScopeOperationDetails
	ScopePaymentP2P
)

var scopeNames = [...]string{
	ScopeAccountInfo:      "account-info",
	ScopeOperationHistory: "operation-history",
	ScopeOperationDetails: "operation-details",
	ScopePaymentP2P:       "payment-p2p",
}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("Scope(%d)", int(s))
	}
	return scopeNames[s]
}

// OperationType filters operation history.
type OperationType int

const (
	OperationDeposition OperationType = iota
	OperationPayment
)

var operationTypeNames = [...]string{
	OperationDeposition: "deposition",
	OperationPayment:    "payment",
}

func (t OperationType) String() string {
	if t < 0 || int(t) >= len(operationTypeNames) {
		return fmt.Sprintf("OperationType(%d)", int(t))
	}
	return operationTypeNames[t]
}

// ParseOperationType is the inverse of OperationType.String.
func ParseOperationType(s string) (OperationType, error) {
	for i, name := range operationTypeNames {
		if name == s {
			return OperationType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation type %q", s)
}

// joinSet renders a set in declaration order, duplicates dropped.
func joinSet[E ~int](set []E, names []string) string {
	seen := make([]bool, len(names))
	for _, v := range set {
		if int(v) >= 0 && int(v) < len(names) {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(names))
	for i, ok := range seen {
		if ok {
			out = append(out, names[i])
		}
	}
	return strings.Join(out, " ")
}
