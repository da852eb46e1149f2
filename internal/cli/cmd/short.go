package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vidmatic/internal/api"
	"vidmatic/internal/track"
)

var validRatios = []string{"9:16", "16:9", "1:1"}

func newShortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "short",
		Short:         "Generate a short-form video and follow its live progress stream",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := assembleShortRequest(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return runTracked(cmd, func(ctx context.Context, svc *track.Service) error {
				return svc.StartShort(ctx, req)
			})
		},
	}

	cmd.Flags().String("category", "", "Content category (required)")
	cmd.Flags().String("ratio", "9:16", "Aspect ratio: 9:16, 16:9, 1:1")
	cmd.Flags().Int("duration", 30, "Target duration in seconds")
	cmd.Flags().String("language", "en", "Narration language code")
	cmd.Flags().String("country", "", "Target country code")
	cmd.Flags().String("description", "", "Free-text description of the video")
	cmd.Flags().String("custom-prompt", "", "Custom generation prompt")
	cmd.Flags().String("image-url", "", "URL of a previously uploaded seed image")
	cmd.Flags().String("image-id", "", "Public id of a previously uploaded seed image")
	bindScheduleFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func assembleShortRequest(cmd *cobra.Command) (api.ShortVideoRequest, error) {
	f := cmd.Flags()
	category, _ := f.GetString("category")
	ratio, _ := f.GetString("ratio")
	duration, _ := f.GetInt("duration")
	language, _ := f.GetString("language")
	country, _ := f.GetString("country")
	description, _ := f.GetString("description")
	customPrompt, _ := f.GetString("custom-prompt")
	imageURL, _ := f.GetString("image-url")
	imageID, _ := f.GetString("image-id")

	var req api.ShortVideoRequest
	if !validRatio(ratio) {
		return req, fmt.Errorf("invalid --ratio: %q (valid: %s)", ratio, strings.Join(validRatios, ", "))
	}
	if duration <= 0 {
		return req, fmt.Errorf("invalid --duration: %d", duration)
	}

	req = api.ShortVideoRequest{
		Category:     category,
		Ratio:        ratio,
		Duration:     duration,
		Language:     language,
		Country:      country,
		Description:  description,
		CustomPrompt: customPrompt,
	}
	if imageURL != "" || imageID != "" {
		req.VideoImage = &api.SeedImage{PublicID: imageID, URL: imageURL}
	}

	sched, err := assembleSchedule(cmd)
	if err != nil {
		return req, err
	}
	req.Schedule = sched
	return req, nil
}

func validRatio(r string) bool {
	for _, v := range validRatios {
		if r == v {
			return true
		}
	}
	return false
}

// bindScheduleFlags adds the recurring-upload schedule flags shared by the
// short and long commands.
func bindScheduleFlags(fs *pflag.FlagSet) {
	fs.String("schedule-type", "", "Recurring upload schedule: daily, weekly, monthly")
	fs.String("schedule-time", "", "Upload time of day, HH:mm")
	fs.String("schedule-start", "", "Schedule start date, YYYY-MM-DD")
	fs.String("schedule-end", "", "Schedule end date, YYYY-MM-DD (optional)")
}

func assembleSchedule(cmd *cobra.Command) (*api.Schedule, error) {
	f := cmd.Flags()
	typ, _ := f.GetString("schedule-type")
	if typ == "" {
		return nil, nil
	}
	switch typ {
	case "daily", "weekly", "monthly":
	default:
		return nil, fmt.Errorf("invalid --schedule-type: %q (valid: daily|weekly|monthly)", typ)
	}
	timeOfDay, _ := f.GetString("schedule-time")
	start, _ := f.GetString("schedule-start")
	end, _ := f.GetString("schedule-end")
	if timeOfDay == "" || start == "" {
		return nil, fmt.Errorf("--schedule-type requires --schedule-time and --schedule-start")
	}
	return &api.Schedule{Type: typ, TimeOfDay: timeOfDay, StartDate: start, EndDate: end}, nil
}
