package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidmatic/internal/event"
	"vidmatic/internal/store"
	"vidmatic/internal/track"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status [job-id]",
		Short:         "Show the state of a long-form job, or re-attach with --watch",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := ""
			if len(args) == 1 {
				jobID = args[0]
			}
			if jobID == "" {
				st, err := store.Default()
				if err != nil {
					return classify(err)
				}
				jobID, err = st.Load()
				if err != nil {
					return classify(err)
				}
				if jobID == "" {
					return &ExitError{Code: ExitCLIError, Err: errors.New("no job id given and none persisted")}
				}
			}

			watch, _ := cmd.Flags().GetBool("watch")
			if watch {
				return runTracked(cmd, func(ctx context.Context, svc *track.Service) error {
					return svc.Track(ctx, jobID)
				})
			}
			return printStatus(cmd, jobID)
		},
	}
	cmd.Flags().Bool("watch", false, "Poll the job to completion instead of printing once")
	return cmd
}

func printStatus(cmd *cobra.Command, jobID string) error {
	client, err := newClient()
	if err != nil {
		return classify(err)
	}
	job, err := client.GetLongVideoJob(cmd.Context(), jobID)
	if err != nil {
		return classify(err)
	}

	n := event.FromJob(job)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s\n", job.JobID)
	fmt.Fprintf(out, "Status:   %s\n", job.Status)
	fmt.Fprintf(out, "Progress: %d%% (%s)\n", n.Percent, n.StepLabel)
	if n.Topic != "" {
		fmt.Fprintf(out, "Topic:    %s\n", n.Topic)
	}
	if n.Title != "" {
		fmt.Fprintf(out, "Title:    %s\n", n.Title)
	}
	if n.OutputLink != "" {
		fmt.Fprintf(out, "Video:    %s\n", n.OutputLink)
	}
	if n.FailureMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", n.FailureMessage)
	}
	return nil
}
