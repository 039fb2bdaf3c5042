package cli

import (
	"fmt"

	"github.com/cassiomorais/yamoney/internal/bootstrap"
	"github.com/spf13/cobra"
)

type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

func NewCmdRevoke(app *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the current token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := app.Client().RevokeToken(cmd.Context()); err != nil {
				return fmt.Errorf("couldn't revoke token: %w", err)
			}
			app.Logger.Info().Msg("Token revoked")
			return printJSON(cmd.OutOrStdout(), RevokeResponse{Revoked: true})
		},
	}
}

func NewCmdAccountInfo(app *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "account-info",
		Short: "Show the wallet balance and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			info, err := app.Client().AccountInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("couldn't get account info: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}
