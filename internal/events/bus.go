// Package events provides an in-process pub/sub bus for upload
// lifecycle notifications.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// EventType represents the type of upload event.
type EventType int

const (
	UploadAccepted EventType = iota
	UploadRejected
	GraphSynced
)

func (t EventType) String() string {
	switch t {
	case UploadAccepted:
		return "upload_accepted"
	case UploadRejected:
		return "upload_rejected"
	case GraphSynced:
		return "graph_synced"
	}
	return "unknown"
}

// Event is one upload lifecycle notification.
type Event struct {
	Type         EventType
	Category     types.Category
	UploadID     string
	Filename     string
	RowCount     int
	QualityScore float64
	// SyncStatus carries the graph mirror outcome on GraphSynced
	// events and is empty otherwise.
	SyncStatus string
	Timestamp  time.Time
}

// Bus is an in-process pub/sub bus. Publishing never blocks: a
// subscriber whose channel is full misses the event.
type Bus struct {
	subscribers sync.Map
	bufferSize  int
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Bus{bufferSize: bufferSize}
}

// Publish sends an event to every matching subscriber.
func (b *Bus) Publish(evt Event) {
	b.subscribers.Range(func(key, value interface{}) bool {
		sub := value.(*Subscriber)
		if sub.matches(evt.Category) {
			select {
			case sub.Ch <- evt:
			default:
				// Subscriber is not keeping up; drop rather than block
				// the pipeline.
			}
		}
		return true
	})
}

// Subscribe registers a subscriber. With no category filters the
// subscriber receives every event.
func (b *Bus) Subscribe(categories ...types.Category) *Subscriber {
	sub := &Subscriber{
		ID:         uuid.NewString(),
		Categories: categories,
		Ch:         make(chan Event, b.bufferSize),
	}
	b.subscribers.Store(sub.ID, sub)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	if value, ok := b.subscribers.LoadAndDelete(id); ok {
		close(value.(*Subscriber).Ch)
	}
}

// Subscriber receives events on Ch until unsubscribed.
type Subscriber struct {
	ID         string
	Categories []types.Category
	Ch         chan Event
}

func (s *Subscriber) matches(category types.Category) bool {
	if len(s.Categories) == 0 {
		return true
	}
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}
