// Package events is the in-process notification channel between the data
// hub and its consumers. Consumers re-pull fresh accessor output when an
// event arrives; events carry no table data themselves.
package events

import (
	"sync"
	"time"

	"phenolab/domain/core"
)

// Kind identifies what changed
type Kind string

const (
	DatasetChanged Kind = "dataset_changed"
	DataChanged    Kind = "data_changed"
	BinningChanged Kind = "binning_changed"
)

// Event is one discrete change notification
type Event struct {
	Kind      Kind
	DatasetID core.DatasetID
	At        time.Time
}

// Hub fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event and is expected to resynchronize
// on its next pull anyway.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewHub creates an event hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel function removes the
// subscription and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking
func (h *Hub) Publish(kind Kind, datasetID core.DatasetID) {
	evt := Event{Kind: kind, DatasetID: datasetID, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
