package ui

import (
	"context"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vidmatic/internal/render"
	"vidmatic/internal/session"
)

// Starter runs one tracked job to completion, reporting snapshots as it goes.
// It blocks until the job ends or ctx is canceled.
type Starter func(ctx context.Context) error

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	start   Starter
	started bool

	// Snapshots and tracker completion arrive over this channel and are
	// re-emitted as tea messages.
	eventCh chan tea.Msg

	view     render.Model
	haveSnap bool
	done     bool
	err      error

	width, height int
	styles        Styles
	spinner       spinner.Model
	bar           bubblesprogress.Model
}

func NewModel(ctx context.Context, start Starter) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	sp := spinner.New()
	sp.Style = sty.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)

	return Model{
		ctx:     c,
		cancel:  cancel,
		start:   start,
		eventCh: make(chan tea.Msg, 256),
		styles:  sty,
		spinner: sp,
		bar:     bar,
	}
}

// Reporter returns the bridge that feeds session snapshots into the program.
func (m Model) Reporter() teaReporter {
	return teaReporter{ch: m.eventCh}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenEventsCmd(),
		m.startTrackerCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case snapshotMsg:
		m.view = render.FromSnapshot(msg.Snap)
		m.haveSnap = true

	case trackerDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.spinner, c = m.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return trackerDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) startTrackerCmd() tea.Cmd {
	ch := m.eventCh
	start := m.start
	ctx := m.ctx
	return func() tea.Msg {
		go func() {
			err := start(ctx)
			ch <- trackerDoneMsg{Err: err}
		}()
		return nil
	}
}

// teaReporter bridges tracker snapshots into tea messages. Intermediate
// snapshots are dropped when the UI is behind; terminal ones block so the
// final state is always delivered.
type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(snap session.Snapshot) {
	if snap.State == session.Completed || snap.State == session.Failed {
		r.ch <- snapshotMsg{Snap: snap}
		return
	}
	select {
	case r.ch <- snapshotMsg{Snap: snap}:
	default:
	}
}
