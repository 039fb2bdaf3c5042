package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	ErrRecipientNotSpecified = errors.New("one of --to-account, --to-email or --to-phone must be specified")
	ErrAmountNotSpecified    = errors.New("one of --amount-net or --amount-total must be specified")
	ErrMoneySourceRequired   = errors.New("one of --wallet or --card must be specified")
)

type RequestTransferFlags struct {
	ToAccount     string
	ToEmail       string
	ToPhone       string
	AmountNet     string
	AmountTotal   string
	Comment       string
	Message       string
	Label         string
	CodePro       bool
	HoldForPickup bool
	ExpirePeriod  uint32
	Test          bool
	TestResult    string
}

type TransferRequest struct {
	To      yamoney.UserID
	Amount  yamoney.RequestAmount
	Options yamoney.TransferOptions
}

func (f *RequestTransferFlags) Validate() (*TransferRequest, error) {
	req := &TransferRequest{
		Options: yamoney.TransferOptions{
			Comment:       f.Comment,
			Message:       f.Message,
			Label:         f.Label,
			CodePro:       f.CodePro,
			HoldForPickup: f.HoldForPickup,
			ExpirePeriod:  f.ExpirePeriod,
		},
	}

	if countSet(f.ToAccount, f.ToEmail, f.ToPhone) != 1 {
		return nil, ErrRecipientNotSpecified
	}
	switch {
	case f.ToAccount != "":
		n, err := strconv.ParseUint(f.ToAccount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --to-account %q: must be a wallet number", f.ToAccount)
		}
		req.To = yamoney.AccountNumber(n)
	case f.ToEmail != "":
		email, err := yamoney.ParseEmail(f.ToEmail)
		if err != nil {
			return nil, err
		}
		req.To = email
	default:
		phone, err := yamoney.ParsePhoneNumber(f.ToPhone)
		if err != nil {
			return nil, err
		}
		req.To = phone
	}

	if countSet(f.AmountNet, f.AmountTotal) != 1 {
		return nil, ErrAmountNotSpecified
	}
	if f.AmountNet != "" {
		v, err := parseAmount("amount-net", f.AmountNet)
		if err != nil {
			return nil, err
		}
		req.Amount = yamoney.NetAmount{Value: v}
	} else {
		v, err := parseAmount("amount-total", f.AmountTotal)
		if err != nil {
			return nil, err
		}
		req.Amount = yamoney.TotalAmount{Value: v}
	}

	if f.TestResult != "" && !f.Test {
		return nil, errors.New("--test-result requires --test")
	}

	return req, nil
}

func NewCmdRequestTransfer(app *bootstrap.App) *cobra.Command {
	f := &RequestTransferFlags{}

	cmd := &cobra.Command{
		Use:   "request-transfer",
		Short: "Request a transfer to another wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := f.Validate()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			pr := app.Client().RequestTransfer(req.To, req.Amount, req.Options)
			return sendPaymentRequest(cmd, pr, f.Test, f.TestResult)
		},
	}

	cmd.Flags().StringVar(&f.ToAccount, "to-account", "", "Recipient wallet number")
	cmd.Flags().StringVar(&f.ToEmail, "to-email", "", "Recipient email")
	cmd.Flags().StringVar(&f.ToPhone, "to-phone", "", "Recipient phone in international format")
	cmd.Flags().StringVar(&f.AmountNet, "amount-net", "", "Amount the recipient receives")
	cmd.Flags().StringVar(&f.AmountTotal, "amount-total", "", "Amount charged to the sender, fees included")
	cmd.Flags().StringVar(&f.Comment, "comment", "", "Comment shown in the sender's history")
	cmd.Flags().StringVar(&f.Message, "message", "", "Message shown to the recipient")
	cmd.Flags().StringVar(&f.Label, "label", "", "Label for filtering the history")
	cmd.Flags().BoolVar(&f.CodePro, "codepro", false, "Protect the transfer with a code")
	cmd.Flags().BoolVar(&f.HoldForPickup, "hold-for-pickup", false, "Hold the transfer until the recipient claims it")
	cmd.Flags().Uint32Var(&f.ExpirePeriod, "expire-period", 0, "Days the recipient has to accept the transfer")
	addTestFlags(cmd, &f.Test, &f.TestResult)

	cmd.MarkFlagsMutuallyExclusive("to-account", "to-email", "to-phone")
	cmd.MarkFlagsOneRequired("to-account", "to-email", "to-phone")
	cmd.MarkFlagsMutuallyExclusive("amount-net", "amount-total")
	cmd.MarkFlagsOneRequired("amount-net", "amount-total")

	return cmd
}

type RequestMobilePaymentFlags struct {
	Phone      string
	Amount     string
	Test       bool
	TestResult string
}

type MobilePaymentRequest struct {
	Phone  yamoney.PhoneNumber
	Amount decimal.Decimal
}

func (f *RequestMobilePaymentFlags) Validate() (*MobilePaymentRequest, error) {
	phone, err := yamoney.ParsePhoneNumber(f.Phone)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", f.Amount)
	if err != nil {
		return nil, err
	}
	if f.TestResult != "" && !f.Test {
		return nil, errors.New("--test-result requires --test")
	}
	return &MobilePaymentRequest{Phone: phone, Amount: amount}, nil
}

func NewCmdRequestMobilePayment(app *bootstrap.App) *cobra.Command {
	f := &RequestMobilePaymentFlags{}

	cmd := &cobra.Command{
		Use:   "request-mobile-payment",
		Short: "Request a mobile phone top-up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := f.Validate()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			pr := app.Client().RequestMobilePayment(req.Phone, req.Amount)
			return sendPaymentRequest(cmd, pr, f.Test, f.TestResult)
		},
	}

	cmd.Flags().StringVar(&f.Phone, "phone", "", "Phone number in international format")
	cmd.Flags().StringVar(&f.Amount, "amount", "", "Top-up amount")
	addTestFlags(cmd, &f.Test, &f.TestResult)

	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

type ProcessPaymentFlags struct {
	RequestID         string
	Wallet            bool
	Card              string
	CSC               string
	ExtAuthSuccessURI string `validate:"omitempty,url"`
	ExtAuthFailURI    string `validate:"omitempty,url"`
}

func (f *ProcessPaymentFlags) Validate() (yamoney.MoneySource, error) {
	if f.RequestID == "" {
		return nil, errors.New("--request-id must be specified")
	}
	if f.Wallet == (f.Card != "") {
		return nil, ErrMoneySourceRequired
	}
	if err := validate.Struct(f); err != nil {
		return nil, errors.New("--ext-auth-success-uri and --ext-auth-fail-uri must be absolute URLs")
	}

	secure := f.ExtAuthSuccessURI != "" || f.ExtAuthFailURI != ""
	if f.Wallet {
		if f.CSC != "" || secure {
			return nil, errors.New("--csc and --ext-auth-* only apply to --card")
		}
		return yamoney.Wallet{}, nil
	}

	card := yamoney.Card{ID: f.Card, CSC: f.CSC}
	if secure {
		if f.ExtAuthSuccessURI == "" || f.ExtAuthFailURI == "" {
			return nil, errors.New("--ext-auth-success-uri and --ext-auth-fail-uri must be specified together")
		}
		card.Secure3D = &yamoney.Secure3D{
			SuccessURI: f.ExtAuthSuccessURI,
			FailURI:    f.ExtAuthFailURI,
		}
	}
	return card, nil
}

func NewCmdProcessPayment(app *bootstrap.App) *cobra.Command {
	f := &ProcessPaymentFlags{}

	cmd := &cobra.Command{
		Use:   "process-payment",
		Short: "Confirm a payment created by a request command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := f.Validate()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			resp, err := app.Client().ProcessPayment(cmd.Context(), f.RequestID, source)
			if err != nil {
				return fmt.Errorf("couldn't process payment: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&f.RequestID, "request-id", "", "Request ID returned by a request command")
	cmd.Flags().BoolVar(&f.Wallet, "wallet", false, "Pay from the wallet balance")
	cmd.Flags().StringVar(&f.Card, "card", "", "Pay with the linked card of this ID")
	cmd.Flags().StringVar(&f.CSC, "csc", "", "Card security code")
	cmd.Flags().StringVar(&f.ExtAuthSuccessURI, "ext-auth-success-uri", "", "3-D Secure success page")
	cmd.Flags().StringVar(&f.ExtAuthFailURI, "ext-auth-fail-uri", "", "3-D Secure failure page")

	_ = cmd.MarkFlagRequired("request-id")
	cmd.MarkFlagsMutuallyExclusive("wallet", "card")
	cmd.MarkFlagsOneRequired("wallet", "card")
	cmd.MarkFlagsRequiredTogether("ext-auth-success-uri", "ext-auth-fail-uri")

	return cmd
}

func addTestFlags(cmd *cobra.Command, test *bool, result *string) {
	cmd.Flags().BoolVar(test, "test", false, "Validate the payment without moving money")
	cmd.Flags().StringVar(result, "test-result", "", "Error code the test payment should answer with")
}

func sendPaymentRequest(cmd *cobra.Command, pr *yamoney.PaymentRequest, test bool, testResult string) error {
	var sender yamoney.Sender = pr
	if test {
		tpr := yamoney.NewTestPaymentRequest(pr)
		tpr.TestResult = testResult
		sender = tpr
	}

	resp, err := sender.Send(cmd.Context())
	if err != nil {
		return fmt.Errorf("couldn't request payment: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func parseAmount(flag, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", flag, raw, err)
	}
	if !v.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("--%s must be positive", flag)
	}
	return v, nil
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
