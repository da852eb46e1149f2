package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidmatic/internal/auth"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "login",
		Short:         "Store the bearer token used to authorize jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _ := cmd.Flags().GetString("with-token")
			if token == "" {
				return &ExitError{Code: ExitCLIError, Err: errors.New("--with-token is required")}
			}
			if err := auth.SaveToken(token); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	}
	cmd.Flags().String("with-token", "", "Bearer token to store")
	return cmd
}
