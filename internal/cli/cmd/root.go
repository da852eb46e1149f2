package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"vidmatic/internal/api"
	"vidmatic/internal/auth"
	"vidmatic/internal/config"
	"vidmatic/internal/logger"
	"vidmatic/internal/session"
	"vidmatic/internal/store"
	"vidmatic/internal/track"
	"vidmatic/internal/ui"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitAuthError      = 2
	ExitTransportError = 3
	ExitJobFailed      = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vidmatic",
		Short:         "Track AI video generation jobs from your terminal",
		Long:          "Vidmatic submits short- and long-form video generation jobs to the backend and follows them to completion: short jobs over the live progress stream, long jobs by polling. Progress renders as a pipeline stepper with per-clip detail, fallback warnings, and the final video link.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(viper.GetBool("verbose"))
		},
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().String("api-base", "", "Backend base URL (e.g. https://example.com)")
	root.PersistentFlags().String("token", "", "Bearer token (overrides the stored credential)")
	root.PersistentFlags().Duration("poll-interval", 20*time.Second, "Status poll cadence for long-form jobs")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging to stderr")
	root.PersistentFlags().Bool("no-ui", false, "Disable TUI; use plain textual output")

	// Subcommands
	root.AddCommand(newShortCmd())
	root.AddCommand(newLongCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	_ = config.Init(root)
	return root.ExecuteContext(ctx)
}

// newClient builds the API client from resolved configuration.
func newClient() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: viper.GetString("api_base"),
		Token:   auth.Token,
	})
}

// newTracker assembles the tracker service with an optional reporter.
func newTracker(rep track.Reporter) (*track.Service, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	st, err := store.Default()
	if err != nil {
		return nil, err
	}
	return track.NewService(
		track.WithBackend(client),
		track.WithStore(st),
		track.WithReporter(rep),
		track.WithPollInterval(viper.GetDuration("poll_interval")),
	), nil
}

// runTracked drives one job through either the TUI or the plain text view.
// start receives the fully wired tracker and blocks until the job ends.
func runTracked(cmd *cobra.Command, start func(ctx context.Context, svc *track.Service) error) error {
	noUI, _ := cmd.Flags().GetBool("no-ui")
	if !noUI && isTerminal() {
		err := ui.Run(cmd.Context(), func(rep track.Reporter) ui.Starter {
			return func(ctx context.Context) error {
				svc, err := newTracker(rep)
				if err != nil {
					return err
				}
				return start(ctx, svc)
			}
		})
		return classify(err)
	}

	rep := newPlainReporter(cmd.OutOrStdout())
	svc, err := newTracker(rep)
	if err != nil {
		return classify(err)
	}
	if err := start(cmd.Context(), svc); err != nil {
		return classify(err)
	}
	if snap := svc.Snapshot(); snap.State == session.Failed {
		return classify(&ui.JobFailedError{Message: snap.FailureMessage})
	}
	return nil
}

// classify maps an error onto the process exit code taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	var jf *ui.JobFailedError
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, api.ErrNoToken):
		return &ExitError{Code: ExitAuthError, Err: err}
	case errors.As(err, &jf):
		return &ExitError{Code: ExitJobFailed, Err: err}
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return &ExitError{Code: ExitTransportError, Err: err}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// plainReporter prints one line per visible change, for logs and non-TTY use.
type plainReporter struct {
	out  io.Writer
	last string
}

func newPlainReporter(out io.Writer) *plainReporter {
	return &plainReporter{out: out}
}

func (r *plainReporter) Update(snap session.Snapshot) {
	line := fmt.Sprintf("[%3d%%] %s", snap.Percent, snap.StepLabel)
	if snap.Message != "" {
		line += ": " + snap.Message
	}
	if n := len(snap.Fallbacks); n > 0 {
		fb := snap.Fallbacks[n-1]
		line += fmt.Sprintf(" (segment %d fell back: %s)", fb.Segment, fb.Reason)
	}
	if line == r.last {
		return
	}
	r.last = line
	fmt.Fprintln(r.out, line)

	switch snap.State {
	case session.Completed:
		if snap.OutputLink != "" {
			fmt.Fprintf(r.out, "Video ready: %s\n", snap.OutputLink)
		}
	case session.Failed:
		if snap.FailureMessage != "" {
			fmt.Fprintf(r.out, "Failed: %s\n", snap.FailureMessage)
		}
	}
}
