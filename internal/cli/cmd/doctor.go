package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidmatic/internal/api"
	"vidmatic/internal/auth"
	"vidmatic/internal/dirs"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose configuration, credentials, and backend reachability",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfgDir, err := dirs.ConfigDir()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(out, "Config dir: %s\n", cfgDir)

			base := api.NormalizeBase(viper.GetString("api_base"))
			if base == "" {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("no API base configured: set api_base in config or VIDMATIC_API_BASE")}
			}
			fmt.Fprintf(out, "API base:   %s\n", base)

			if _, err := auth.Token(); err != nil {
				return &ExitError{Code: ExitAuthError, Err: err}
			}
			fmt.Fprintln(out, "Token:      found")

			client, err := newClient()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				return &ExitError{Code: ExitTransportError, Err: fmt.Errorf("backend unreachable: %w", err)}
			}
			fmt.Fprintln(out, "Backend:    reachable")
			return nil
		},
	}
}
