// Package track orchestrates one job end to end: submit, pick the transport,
// fold every update into the session, and notify the reporter after each
// fold. Short-form jobs ride the streaming feed; long-form jobs are polled.
package track

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vidmatic/internal/api"
	"vidmatic/internal/event"
	"vidmatic/internal/logger"
	"vidmatic/internal/poll"
	"vidmatic/internal/session"
	"vidmatic/internal/store"
	"vidmatic/internal/stream"
)

// errStreamEnded marks a streaming feed that closed before any terminal
// phase arrived.
var errStreamEnded = errors.New("progress stream ended before the job finished")

// Backend is the slice of the API client the tracker needs.
type Backend interface {
	CreateShortVideo(ctx context.Context, req api.ShortVideoRequest) (io.ReadCloser, error)
	CreateLongVideo(ctx context.Context, req api.LongVideoRequest) (api.LongVideoCreated, error)
	GetLongVideoJob(ctx context.Context, jobID string) (api.LongVideoJob, error)
}

// Reporter receives a snapshot after every session change (used by TUI).
type Reporter interface {
	Update(snap session.Snapshot)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(session.Snapshot)

// Update implements Reporter.
func (f ReporterFunc) Update(snap session.Snapshot) { f(snap) }

// Service drives the submit → attach → fold loop for a single session.
type Service struct {
	backend  Backend
	store    *store.JobStore
	reporter Reporter
	interval time.Duration

	sess *session.Session

	mu       sync.Mutex
	reader   *stream.Reader
	poller   *poll.Poller
	canceled atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithBackend sets the API backend.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		s.backend = b
	}
}

// WithStore sets the job-pointer store used for long-form resume.
func WithStore(st *store.JobStore) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(r Reporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

// WithPollInterval overrides the long-form poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		s.interval = d
	}
}

// NewService constructs a Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{sess: session.New(), interval: poll.DefaultInterval}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the current session snapshot.
func (s *Service) Snapshot() session.Snapshot {
	return s.sess.Snapshot()
}

func (s *Service) notify() {
	if s.reporter != nil {
		s.reporter.Update(s.sess.Snapshot())
	}
}

// StartShort submits a short-form job and folds its streaming feed until the
// stream ends or the tracker is canceled. Blocks for the whole job.
func (s *Service) StartShort(ctx context.Context, req api.ShortVideoRequest) error {
	s.Cancel()
	s.canceled.Store(false)
	s.sess.BeginSubmit()
	s.notify()

	body, err := s.backend.CreateShortVideo(ctx, req)
	if err != nil {
		s.sess.SubmitFailed()
		s.notify()
		return err
	}

	// The backend returns no id on the streaming path; the session id only
	// labels logs and the UI header.
	sessionID := uuid.NewString()
	s.sess.Attach(sessionID)
	s.notify()
	logger.Info().Str("session_id", sessionID).Msg("streaming job attached")

	r := stream.NewReader(body)
	s.mu.Lock()
	s.reader = r
	s.mu.Unlock()

	err = r.Run(func(ev api.StreamEvent) {
		s.sess.Apply(event.FromStream(ev))
		s.notify()
	})

	s.mu.Lock()
	s.reader = nil
	s.mu.Unlock()

	if err != nil {
		if s.sess.State() == session.Completed {
			// The job finished before the connection dropped; nothing lost.
			logger.Warn().Err(err).Msg("stream error after completion")
			return nil
		}
		s.sess.TransportFailed(err)
		s.notify()
		return err
	}
	if s.sess.State() == session.Tracking && !s.canceled.Load() {
		// Stream ended without a terminal phase: the connection dropped.
		s.sess.TransportFailed(errStreamEnded)
		s.notify()
		return errStreamEnded
	}
	return nil
}

// StartLong submits a long-form job, persists its id for resume, and polls it
// to a terminal status. Blocks for the whole job.
func (s *Service) StartLong(ctx context.Context, req api.LongVideoRequest) error {
	s.Cancel()
	s.canceled.Store(false)
	s.sess.BeginSubmit()
	s.notify()

	created, err := s.backend.CreateLongVideo(ctx, req)
	if err != nil {
		s.sess.SubmitFailed()
		s.notify()
		return err
	}
	if s.store != nil {
		if serr := s.store.Save(created.JobID); serr != nil {
			logger.Warn().Err(serr).Msg("could not persist job id; resume disabled for this job")
		}
	}
	logger.Info().Str("job_id", created.JobID).Msg("long-form job created")

	return s.trackLong(ctx, created.JobID)
}

// Resume picks up the persisted long-form job, if any. Returns false when
// there is nothing to resume. A job found already terminal is folded once and
// its pointer cleared.
func (s *Service) Resume(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	jobID, err := s.store.Load()
	if err != nil {
		return false, err
	}
	if jobID == "" {
		return false, nil
	}
	logger.Info().Str("job_id", jobID).Msg("resuming long-form job")
	return true, s.Track(ctx, jobID)
}

// Track follows an existing long-form job without re-submitting it.
func (s *Service) Track(ctx context.Context, jobID string) error {
	s.Cancel()
	s.canceled.Store(false)
	s.sess.Reset()
	return s.trackLong(ctx, jobID)
}

func (s *Service) trackLong(ctx context.Context, jobID string) error {
	s.sess.Attach(jobID)
	s.notify()

	p := poll.New(s.backend.GetLongVideoJob, s.interval)
	s.mu.Lock()
	s.poller = p
	s.mu.Unlock()

	err := p.Run(ctx, jobID, func(job api.LongVideoJob) {
		s.sess.Apply(event.FromJob(job))
		s.notify()
	})

	s.mu.Lock()
	s.poller = nil
	s.mu.Unlock()

	if err != nil {
		s.sess.TransportFailed(err)
		s.notify()
		return err
	}
	switch s.sess.State() {
	case session.Completed, session.Failed:
		if s.store != nil {
			_ = s.store.Clear()
		}
	}
	return nil
}

// Cancel stops whichever transport is live. Safe to call multiple times and
// when nothing is running.
func (s *Service) Cancel() {
	s.canceled.Store(true)
	s.mu.Lock()
	r, p := s.reader, s.poller
	s.mu.Unlock()
	if r != nil {
		r.Cancel()
	}
	if p != nil {
		p.Cancel()
	}
}
