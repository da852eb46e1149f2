package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidmatic/internal/api"
	"vidmatic/internal/track"
)

func newLongCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "long",
		Short:         "Generate a long-form video and poll it to completion",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, _ := cmd.Flags().GetBool("resume")
			if resume {
				return runTracked(cmd, func(ctx context.Context, svc *track.Service) error {
					ok, err := svc.Resume(ctx)
					if err != nil {
						return err
					}
					if !ok {
						return errors.New("no in-flight long-form job to resume")
					}
					return nil
				})
			}

			req, err := assembleLongRequest(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return runTracked(cmd, func(ctx context.Context, svc *track.Service) error {
				return svc.StartLong(ctx, req)
			})
		},
	}

	cmd.Flags().String("category", "", "Content category (required unless --resume)")
	cmd.Flags().String("language", "en", "Narration language code")
	cmd.Flags().Int("duration", 480, "Target duration in seconds")
	cmd.Flags().String("topic-hint", "", "Preferred topic hint for the planner")
	cmd.Flags().Bool("resume", false, "Re-attach to the last submitted long-form job")
	bindScheduleFlags(cmd.Flags())

	return cmd
}

func assembleLongRequest(cmd *cobra.Command) (api.LongVideoRequest, error) {
	f := cmd.Flags()
	category, _ := f.GetString("category")
	language, _ := f.GetString("language")
	duration, _ := f.GetInt("duration")
	topicHint, _ := f.GetString("topic-hint")

	var req api.LongVideoRequest
	if category == "" {
		return req, errors.New("--category is required")
	}
	if duration <= 0 {
		return req, fmt.Errorf("invalid --duration: %d", duration)
	}

	req = api.LongVideoRequest{
		PreferredTopicHint: topicHint,
		Category:           category,
		Language:           language,
		TargetDurationSec:  duration,
	}
	sched, err := assembleSchedule(cmd)
	if err != nil {
		return req, err
	}
	req.Schedule = sched
	return req, nil
}
