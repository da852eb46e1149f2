package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"vidmatic/internal/session"
	"vidmatic/internal/track"
)

// Run launches the TUI around one tracked job. bind receives the reporter the
// tracker should publish snapshots to and returns the Starter that runs the
// job. Returns the tracker's error, or the final failure message when the
// session ended Failed.
func Run(ctx context.Context, bind func(rep track.Reporter) Starter) error {
	m := NewModel(ctx, nil)
	m.start = bind(m.Reporter())

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		if fm.err != nil {
			return fm.err
		}
		if fm.view.State == session.Failed && fm.view.FailureMessage != "" {
			return &JobFailedError{Message: fm.view.FailureMessage}
		}
	}
	return nil
}

// JobFailedError reports a job that ended in a failure state even though the
// transport itself shut down cleanly.
type JobFailedError struct {
	Message string
}

func (e *JobFailedError) Error() string { return e.Message }
