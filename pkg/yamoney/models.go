package yamoney

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type AccountInfo struct {
	Account        string          `json:"account"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	AccountStatus  string          `json:"account_status"`
	AccountType    string          `json:"account_type"`
	BalanceDetails *BalanceDetails `json:"balance_details,omitempty"`
	CardsLinked    []LinkedCard    `json:"cards_linked,omitempty"`
}

type BalanceDetails struct {
	Total             decimal.Decimal  `json:"total"`
	Available         decimal.Decimal  `json:"available"`
	DepositionPending *decimal.Decimal `json:"deposition_pending,omitempty"`
	Blocked           *decimal.Decimal `json:"blocked,omitempty"`
	Debt              *decimal.Decimal `json:"debt,omitempty"`
	Hold              *decimal.Decimal `json:"hold,omitempty"`
}

type LinkedCard struct {
	PanFragment string `json:"pan_fragment"`
	Type        string `json:"type"`
}

// Operation is one entry of the operation history.
type Operation struct {
	OperationID string          `json:"operation_id"`
	Status      string          `json:"status"`
	Datetime    time.Time       `json:"datetime"`
	Title       string          `json:"title"`
	PatternID   string          `json:"pattern_id,omitempty"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Label       string          `json:"label,omitempty"`
	Type        string          `json:"type"`

	// Set only when the history was requested with details.
	Details *OperationDetails `json:"-"`
}

// OperationDetails extends Operation with the fields returned by
// api/operation-details and by detailed history.
type OperationDetails struct {
	OperationID    string           `json:"operation_id"`
	Status         string           `json:"status"`
	PatternID      string           `json:"pattern_id,omitempty"`
	Direction      string           `json:"direction"`
	Amount         decimal.Decimal  `json:"amount"`
	AmountDue      *decimal.Decimal `json:"amount_due,omitempty"`
	Fee            *decimal.Decimal `json:"fee,omitempty"`
	Datetime       time.Time        `json:"datetime"`
	Title          string           `json:"title"`
	Sender         string           `json:"sender,omitempty"`
	Recipient      string           `json:"recipient,omitempty"`
	RecipientType  string           `json:"recipient_type,omitempty"`
	Message        string           `json:"message,omitempty"`
	Comment        string           `json:"comment,omitempty"`
	Codepro        bool             `json:"codepro,omitempty"`
	ProtectionCode string           `json:"protection_code,omitempty"`
	Expires        *time.Time       `json:"expires,omitempty"`
	AnswerDatetime *time.Time       `json:"answer_datetime,omitempty"`
	Label          string           `json:"label,omitempty"`
	Details        string           `json:"details,omitempty"`
	Type           string           `json:"type"`
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	type plain Operation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["details"]; ok {
		var d OperationDetails
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		p.Details = &d
	}

	*o = Operation(p)
	return nil
}

// Cursor is the history position returned as next_record. The API sends it as
// a string; numbers are accepted too.
type Cursor uint64

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("next_record %q: %w", s, err)
		}
		*c = Cursor(v)
		return nil
	}

	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("next_record: %w", err)
	}
	*c = Cursor(v)
	return nil
}

type OperationHistoryResponse struct {
	NextRecord *Cursor     `json:"next_record,omitempty"`
	Operations []Operation `json:"operations"`
}

// RequestPaymentResponse is the answer to api/request-payment.
type RequestPaymentResponse struct {
	Status                 string           `json:"status"`
	RequestID              string           `json:"request_id,omitempty"`
	ContractAmount         *decimal.Decimal `json:"contract_amount,omitempty"`
	Balance                *decimal.Decimal `json:"balance,omitempty"`
	RecipientAccountStatus string           `json:"recipient_account_status,omitempty"`
	RecipientAccountType   string           `json:"recipient_account_type,omitempty"`
	ProtectionCode         string           `json:"protection_code,omitempty"`
	AccountUnblockURI      string           `json:"account_unblock_uri,omitempty"`
	ExtActionURI           string           `json:"ext_action_uri,omitempty"`
	MoneySource            *MoneySources    `json:"money_source,omitempty"`
}

type MoneySources struct {
	Wallet *struct {
		Allowed bool `json:"allowed"`
	} `json:"wallet,omitempty"`
	Cards *struct {
		Allowed     bool              `json:"allowed"`
		CSCRequired bool              `json:"csc_required"`
		Items       []MoneySourceCard `json:"items,omitempty"`
	} `json:"cards,omitempty"`
}

// MoneySourceCard is a card offered as a money source; unlike LinkedCard it
// carries the id to pass back in Card.ID.
type MoneySourceCard struct {
	ID          string `json:"id"`
	PanFragment string `json:"pan_fragment"`
	Type        string `json:"type"`
}

// ProcessPaymentResponse is the answer to api/process-payment.
type ProcessPaymentResponse struct {
	Status            string            `json:"status"`
	PaymentID         string            `json:"payment_id,omitempty"`
	Balance           *decimal.Decimal  `json:"balance,omitempty"`
	InvoiceID         string            `json:"invoice_id,omitempty"`
	Payer             string            `json:"payer,omitempty"`
	Payee             string            `json:"payee,omitempty"`
	CreditAmount      *decimal.Decimal  `json:"credit_amount,omitempty"`
	AccountUnblockURI string            `json:"account_unblock_uri,omitempty"`
	HoldForPickupLink string            `json:"hold_for_pickup_link,omitempty"`
	ACSURI            string            `json:"acs_uri,omitempty"`
	ACSParams         map[string]string `json:"acs_params,omitempty"`
	NextRetry         int64             `json:"next_retry,omitempty"`
}

type tokenExchange struct {
	AccessToken string `json:"access_token"`
}
