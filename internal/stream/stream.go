package stream

import (
	"context"
	"sync"
	"time"
)

// EntryEvent describes a freshly logged time entry for live dashboards.
type EntryEvent struct {
	EntryID   string    `json:"entryId"`
	RegionID  string    `json:"regionId,omitempty"`
	Country   string    `json:"country"`
	Language  string    `json:"language"`
	Hours     float64   `json:"hours"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs entry events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan EntryEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan EntryEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan EntryEvent {
	ch := make(chan EntryEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt EntryEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking the write path.
		}
	}
}
