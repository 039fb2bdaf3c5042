package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/cassiomorais/yamoney/pkg/yamoney"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

// loginScopes are requested on every login so that all API commands work
// with the resulting token.
var loginScopes = []yamoney.Scope{
	yamoney.ScopeAccountInfo,
	yamoney.ScopeOperationHistory,
	yamoney.ScopeOperationDetails,
	yamoney.ScopePaymentP2P,
}

type LoginFlags struct {
	ClientID       string `validate:"required"`
	ClientRedirect string `validate:"required,url"`
	DoNotStore     bool
}

func (f *LoginFlags) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "ClientID":
				return errors.New("--client-id (or CLIENT_ID) must be specified")
			case "ClientRedirect":
				return errors.New("--client-redirect (or CLIENT_REDIRECT) must be an absolute URL")
			}
		}
		return err
	}
	return nil
}

type LoginResponse struct {
	Token    string `json:"token"`
	StoredAt string `json:"stored_at,omitempty"`
}

func NewCmdLogin(app *bootstrap.App) *cobra.Command {
	f := &LoginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this client and obtain a permanent token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			authorizer := app.Authorizer(f.ClientID, f.ClientRedirect)
			token, err := authorizer.Authorize(cmd.Context(), loginScopes, promptForCode(cmd.InOrStdin(), cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("couldn't authorize: %w", err)
			}

			resp := &LoginResponse{Token: token}
			if !f.DoNotStore {
				store := app.TokenStore()
				if err := store.Save(token); err != nil {
					return fmt.Errorf("couldn't save token: %w", err)
				}
				resp.StoredAt = store.Path()
				app.Logger.Info().Str("path", store.Path()).Msg("Token saved")
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&f.ClientID, "client-id", app.Config.Auth.ClientID, "Registered application ID (env CLIENT_ID)")
	cmd.Flags().StringVar(&f.ClientRedirect, "client-redirect", app.Config.Auth.ClientRedirect, "Registered redirect URI (env CLIENT_REDIRECT)")
	cmd.Flags().BoolVarP(&f.DoNotStore, "do-not-store", "n", false, "Print the token without saving it to the config file")

	return cmd
}

// promptForCode shows the authorization page to the user and reads back the
// address the browser was redirected to.
func promptForCode(in io.Reader, out io.Writer) yamoney.CodeFunc {
	return func(_ context.Context, redirectURL string) (string, error) {
		_, _ = fmt.Fprintf(out, "Please open this page in your browser: %s\n", redirectURL)
		_, _ = fmt.Fprintln(out, "Copy and paste your redirect URI here")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read redirect URI: %w", err)
		}

		return yamoney.CodeFromRedirect(strings.TrimSpace(line))
	}
}
