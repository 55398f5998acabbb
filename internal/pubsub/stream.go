package pubsub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

// Stream is a last-value-cached broadcast stream: new subscribers immediately
// receive the most recently published value, then every subsequent publish.
// Delivery keeps only the newest value per subscriber (cap-1 channel with
// drop-oldest), which matches the single local consumer the app serves
type Stream[T any] struct {
	mu   sync.Mutex
	subs map[uuid.UUID]chan T
	last *T
}

// NewStream creates a new stream with no cached value
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[uuid.UUID]chan T)}
}

// NewStreamWith creates a new stream seeded with an initial cached value
func NewStreamWith[T any](initial T) *Stream[T] {
	s := NewStream[T]()
	s.last = &initial
	return s
}

// Subscribe registers a subscriber and returns its token and channel.
// The latest published value, if any, is delivered immediately
func (s *Stream[T]) Subscribe() (uuid.UUID, <-chan T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	ch := make(chan T, 1)
	if s.last != nil {
		ch <- *s.last
	}
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (s *Stream[T]) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.subs[id]
	if !ok {
		return
	}
	delete(s.subs, id)
	close(ch)
}

// Publish caches the value and delivers it to all subscribers, replacing any
// value a slow subscriber has not yet consumed
func (s *Stream[T]) Publish(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &value
	for _, ch := range s.subs {
		select {
		case ch <- value:
		default:
			// Drop the stale value, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- value:
			default:
			}
		}
	}
}

// Last returns the most recently published value, or false if nothing has
// been published yet
func (s *Stream[T]) Last() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		var zero T
		return zero, false
	}
	return *s.last, true
}

// Streams bundles the notification surface exposed to the presentation layer
type Streams struct {
	// CurrentAsset carries the asset currently being viewed; an empty-symbol
	// asset clears the view
	CurrentAsset *Stream[domain.Asset]

	// LastUpdatedAsset carries every asset whose record just changed
	LastUpdatedAsset *Stream[domain.Asset]

	// NetWorth carries the aggregate valuation after each recomputation
	NetWorth *Stream[domain.NetWorthSummary]

	// AssetsChanged signals that the set of tracked symbols changed
	AssetsChanged *Stream[struct{}]
}

// NewStreams creates the notification surface with the zero net worth cached,
// so subscribers always observe a value immediately
func NewStreams() *Streams {
	return &Streams{
		CurrentAsset:     NewStream[domain.Asset](),
		LastUpdatedAsset: NewStream[domain.Asset](),
		NetWorth:         NewStreamWith(domain.NetWorthSummary{}),
		AssetsChanged:    NewStream[struct{}](),
	}
}
