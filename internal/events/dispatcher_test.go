package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishRunsHandlersAfterPublisherCancels(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop(), time.Second)

	var mu sync.Mutex
	var got []Event
	release := make(chan struct{})
	d.Subscribe(EventComplaintCreated, func(ctx context.Context, e Event) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() == nil {
			got = append(got, e)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Publish(ctx, Event{Type: EventComplaintCreated, ComplaintID: "c-1"}))
	cancel()
	close(release)

	require.NoError(t, d.Wait(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "c-1", got[0].ComplaintID)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestPublishOnlyReachesMatchingSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil, 0)
	var created, changed int
	var mu sync.Mutex
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		mu.Lock()
		created++
		mu.Unlock()
		return nil
	})
	d.Subscribe(EventComplaintStatusChanged, func(context.Context, Event) error {
		mu.Lock()
		changed++
		mu.Unlock()
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintStatusChanged}))
	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, 0, created)
	assert.Equal(t, 1, changed)
}

func TestHandlerFailuresAreLoggedOnce(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := NewInMemoryDispatcher(zap.New(core), time.Second)
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		return errors.New("smtp down")
	})
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		panic("boom")
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintCreated}))
	require.NoError(t, d.Wait(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("event handler panicked").Len())
}

func TestWaitHonoursContext(t *testing.T) {
	d := NewInMemoryDispatcher(nil, 0)
	block := make(chan struct{})
	defer close(block)
	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		<-block
		return nil
	})
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintCreated}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}
