package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var validate = validator.New()

type RootFlags struct {
	LogLevel string
	Trace    bool
}

// NewCmdRoot builds the command tree. Without a token only login is
// offered; with one the API commands are added.
func NewCmdRoot(app *bootstrap.App) *cobra.Command {
	rf := &RootFlags{}

	cmd := &cobra.Command{
		Use:           "yamoney",
		Short:         "Manage a Yandex.Money wallet from the command line",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Var(strings.ToLower(rf.LogLevel), "oneof=trace debug info warn warning error fatal disabled"); err != nil {
				return fmt.Errorf("invalid --log-level %q", rf.LogLevel)
			}

			if cmd.Flags().Changed("log-level") {
				app.SetLogLevel(rf.LogLevel)
			}
			if rf.Trace {
				app.EnableTracing(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&rf.LogLevel, "log-level", app.Config.Observability.LogLevel,
		"Log level: trace, debug, info, warn, error or disabled")
	cmd.PersistentFlags().BoolVar(&rf.Trace, "trace", false, "Print a span for every API call to stderr")

	cmd.AddCommand(NewCmdLogin(app))

	if !app.Config.Authorized() {
		return cmd
	}

	cmd.AddCommand(
		NewCmdRevoke(app),
		NewCmdAccountInfo(app),
		NewCmdRequestTransfer(app),
		NewCmdRequestMobilePayment(app),
		NewCmdProcessPayment(app),
		NewCmdOperationHistory(app),
		NewCmdOperationDetails(app),
	)

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("couldn't format result as JSON: %w", err)
	}
	return nil
}
