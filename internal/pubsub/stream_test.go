package pubsub

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReplaysLastValue(t *testing.T) {
	stream := NewStream[int]()
	stream.Publish(42)

	_, ch := stream.Subscribe()

	select {
	case v := <-ch:
		assert.Equal(t, 42, v)
	default:
		t.Fatal("expected cached value to be replayed immediately")
	}
}

func TestSubscribe_NoValueYet(t *testing.T) {
	stream := NewStream[int]()

	_, ch := stream.Subscribe()

	select {
	case <-ch:
		t.Fatal("expected no value before first publish")
	default:
	}

	_, ok := stream.Last()
	assert.False(t, ok)
}

func TestPublish_ReachesAllSubscribers(t *testing.T) {
	stream := NewStream[string]()

	_, ch1 := stream.Subscribe()
	_, ch2 := stream.Subscribe()

	stream.Publish("hello")

	assert.Equal(t, "hello", <-ch1)
	assert.Equal(t, "hello", <-ch2)
}

func TestPublish_SlowSubscriberKeepsNewest(t *testing.T) {
	stream := NewStream[int]()

	_, ch := stream.Subscribe()

	stream.Publish(1)
	stream.Publish(2)
	stream.Publish(3)

	// Only the newest value survives for a subscriber that never drained
	assert.Equal(t, 3, <-ch)

	last, ok := stream.Last()
	require.True(t, ok)
	assert.Equal(t, 3, last)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	stream := NewStream[int]()

	id, ch := stream.Subscribe()
	stream.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless
	stream.Unsubscribe(id)

	// Publishing after unsubscribe does not panic
	stream.Publish(7)
}

func TestNewStreams_SeedsZeroNetWorth(t *testing.T) {
	streams := NewStreams()

	_, ch := streams.NetWorth.Subscribe()

	select {
	case summary := <-ch:
		assert.True(t, summary.BookValue.Equal(decimal.Zero))
		assert.True(t, summary.MarketValue.Equal(decimal.Zero))
	default:
		t.Fatal("expected zero net worth to be cached for new subscribers")
	}

	_, ok := streams.CurrentAsset.Last()
	assert.False(t, ok)
}
