package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidmatic/internal/api"
)

func TestRun_StopsOnTerminalStatus(t *testing.T) {
	responses := []api.LongVideoJob{
		{Status: "queued"},
		{Status: "running"},
		{Status: "completed", FinalVideoURL: "https://cdn/final.mp4"},
	}
	calls := 0
	fetch := func(ctx context.Context, jobID string) (api.LongVideoJob, error) {
		job := responses[calls]
		calls++
		return job, nil
	}

	var seen []string
	p := New(fetch, time.Millisecond)
	err := p.Run(context.Background(), "job-1", func(j api.LongVideoJob) {
		seen = append(seen, j.Status)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls, "no tick after the terminal status")
	assert.Equal(t, []string{"queued", "running", "completed"}, seen)
}

func TestRun_FirstTickImmediate(t *testing.T) {
	fetched := make(chan struct{}, 1)
	fetch := func(ctx context.Context, jobID string) (api.LongVideoJob, error) {
		fetched <- struct{}{}
		return api.LongVideoJob{Status: "failed"}, nil
	}

	p := New(fetch, time.Hour)
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background(), "job-1", func(api.LongVideoJob) {}) }()

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("first tick did not fire immediately")
	}
	require.NoError(t, <-done)
}

func TestRun_FetchErrorStopsWithoutRetry(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, jobID string) (api.LongVideoJob, error) {
		calls++
		return api.LongVideoJob{}, errors.New("401 unauthorized")
	}

	p := New(fetch, time.Millisecond)
	err := p.Run(context.Background(), "job-1", func(api.LongVideoJob) {
		t.Fatal("no event expected on transport failure")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCancel_DiscardsInFlightTick(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, jobID string) (api.LongVideoJob, error) {
		close(started)
		<-release
		return api.LongVideoJob{Status: "running"}, nil
	}

	p := New(fetch, time.Millisecond)
	done := make(chan error, 1)
	emitted := 0
	go func() {
		done <- p.Run(context.Background(), "job-1", func(api.LongVideoJob) { emitted++ })
	}()

	<-started
	p.Cancel()
	close(release)

	require.NoError(t, <-done)
	assert.Zero(t, emitted, "in-flight tick result must be discarded after cancel")
}

func TestCancel_Idempotent(t *testing.T) {
	p := New(func(ctx context.Context, jobID string) (api.LongVideoJob, error) {
		return api.LongVideoJob{Status: "completed"}, nil
	}, time.Millisecond)

	require.NoError(t, p.Run(context.Background(), "job-1", func(api.LongVideoJob) {}))
	p.Cancel()
	p.Cancel()
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal("completed"))
	assert.True(t, Terminal("Failed"))
	assert.False(t, Terminal("running"))
	assert.False(t, Terminal(""))
}
