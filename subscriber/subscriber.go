// Package subscriber provides delivery primitives for pushed event logs and
// the accumulating listener used for live event verification.
package subscriber

import (
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
)

// Subscriber receives pushed logs through a chosen delivery mechanism.
type Subscriber interface {
	// Send delivers a log to this subscriber. Non-blocking.
	Send(lg *types.Log)

	// Close terminates the subscriber and releases resources.
	Close()
}

// Channel delivers pushed logs through a Go channel.
type Channel struct {
	ch   chan *types.Log
	done chan struct{}
}

// NewChannel creates a channel-based subscriber with the given buffer size.
func NewChannel(bufSize int) *Channel {
	if bufSize <= 0 {
		bufSize = 128
	}
	return &Channel{
		ch:   make(chan *types.Log, bufSize),
		done: make(chan struct{}),
	}
}

// Logs returns the channel to read logs from.
func (c *Channel) Logs() <-chan *types.Log {
	return c.ch
}

// Send delivers a log to the channel. Drops the log if the channel is full.
func (c *Channel) Send(lg *types.Log) {
	select {
	case c.ch <- lg:
	case <-c.done:
	default:
		// drop: subscriber is not keeping up
	}
}

// Close shuts down the subscriber.
func (c *Channel) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// CallbackFunc is the function signature for log callbacks.
type CallbackFunc func(*types.Log)

// Callback delivers pushed logs by invoking a callback function.
type Callback struct {
	fn   CallbackFunc
	done chan struct{}
}

// NewCallback creates a callback-based subscriber.
func NewCallback(fn CallbackFunc) *Callback {
	return &Callback{
		fn:   fn,
		done: make(chan struct{}),
	}
}

// Send invokes the callback with the log. No-op if closed.
func (c *Callback) Send(lg *types.Log) {
	select {
	case <-c.done:
		return
	default:
	}
	c.fn(lg)
}

// Close stops the subscriber.
func (c *Callback) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Broadcast distributes pushed logs to multiple subscribers.
type Broadcast struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewBroadcast creates a new broadcast dispatcher.
func NewBroadcast() *Broadcast {
	return &Broadcast{}
}

// Add registers a subscriber to receive broadcast logs.
func (b *Broadcast) Add(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

// Send delivers a log to all registered subscribers.
func (b *Broadcast) Send(lg *types.Log) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.Send(lg)
	}
}

// Close shuts down all registered subscribers.
func (b *Broadcast) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		sub.Close()
	}
	b.subs = nil
}

// Len returns the number of registered subscribers.
func (b *Broadcast) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
