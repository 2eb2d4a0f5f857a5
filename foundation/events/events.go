// Package events allows for the registering and receiving of chain events.
package events

import (
	"fmt"
	"sync"
)

// Set of event types published by the chain.
const (
	TypeBlockAdded     = "block_added"
	TypeChainValidated = "chain_validated"
)

// Event represents something that happened to the chain.
type Event struct {
	Type   string `json:"type"`
	Height uint64 `json:"height"`
	Hash   string `json:"hash,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// String implements the fmt.Stringer interface for logging.
func (e Event) String() string {
	return fmt.Sprintf("%s: blk[%d]: hash[%s] %s", e.Type, e.Height, e.Hash, e.Detail)
}

// =============================================================================

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]chan Event
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan Event),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.m[id]; exists {
		return ch
	}

	// A message is dropped if the receiver is not ready, so the buffer gives
	// a slow websocket writer some room.
	const messageBuffer = 100

	ch := make(chan Event, messageBuffer)
	evt.m[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Send signals an event to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(e Event) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- e:
		default:
		}
	}
}
