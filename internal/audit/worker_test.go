package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	InMemoryStore
	failures int
}

func (s *failingStore) Append(ctx context.Context, entry Entry) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk on fire")
	}
	return s.InMemoryStore.Append(ctx, entry)
}

func TestWorkerPersistsEntries(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Entry, 4)
	worker := NewWorker(store, inbox, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Entry{ID: "e1", UserID: "u1", Resource: "orders"}
	inbox <- Entry{ID: "e2", UserID: "u1", Resource: "orders"}

	require.Eventually(t, func() bool {
		entries, err := store.Recent(context.Background(), 10)
		return err == nil && len(entries) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorkerSurvivesWriteFailures(t *testing.T) {
	store := &failingStore{failures: 1}
	inbox := make(chan Entry, 4)
	worker := NewWorker(store, inbox, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	inbox <- Entry{ID: "e1"}
	inbox <- Entry{ID: "e2"}

	require.Eventually(t, func() bool {
		entries, err := store.Recent(context.Background(), 10)
		return err == nil && len(entries) == 1 && entries[0].ID == "e2"
	}, time.Second, 5*time.Millisecond)
}
