package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/interviewer/pkg/audit"
	"mercator-hq/interviewer/pkg/audit/storage"
)

var now = time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC)

func seed(t *testing.T, ages ...time.Duration) *storage.MemoryStorage {
	t.Helper()
	s := storage.NewMemoryStorage()
	for i, age := range ages {
		require.NoError(t, s.Store(context.Background(), &audit.Record{
			ID:        string(rune('a' + i)),
			StartedAt: now.Add(-age),
			Outcome:   audit.OutcomeCompleted,
		}))
	}
	return s
}

func TestPruner_DeletesExpired(t *testing.T) {
	s := seed(t, time.Hour, 6*24*time.Hour, 8*24*time.Hour, 30*24*time.Hour)
	p := NewPruner(s, 7)
	p.now = func() time.Time { return now }

	assert.Equal(t, now.AddDate(0, 0, -7), p.Cutoff())

	deleted, err := p.Prune(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	left, err := s.Count(context.Background(), audit.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, left)
}

func TestPruner_ZeroDaysKeepsEverything(t *testing.T) {
	s := seed(t, 365*24*time.Hour)
	p := NewPruner(s, 0)

	deleted, err := p.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPruner_StorageError(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.Close())

	_, err := NewPruner(s, 1).Prune(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, audit.ErrClosed))
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(NewPruner(storage.NewMemoryStorage(), 1), "every day")
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	sched, err := NewScheduler(NewPruner(storage.NewMemoryStorage(), 1), "0 3 * * *")
	require.NoError(t, err)
	assert.Nil(t, sched.NextRun())

	require.NoError(t, sched.Start(context.Background()))
	require.NoError(t, sched.Start(context.Background()))
	assert.True(t, sched.IsRunning())

	require.Eventually(t, func() bool {
		next := sched.NextRun()
		return next != nil && next.After(time.Now())
	}, time.Second, 10*time.Millisecond)

	sched.Stop()
	sched.Stop()
	assert.False(t, sched.IsRunning())
}

func TestScheduler_RunPrunesImmediately(t *testing.T) {
	s := seed(t, 48*time.Hour, 0)
	p := NewPruner(s, 1)
	p.now = func() time.Time { return now }

	sched, err := NewScheduler(p, "0 3 * * *")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	require.Eventually(t, func() bool {
		n, err := s.Count(context.Background(), audit.Query{})
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, sched.IsRunning())
}
