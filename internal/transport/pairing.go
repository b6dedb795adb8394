package transport

import (
	"sync"
	"time"
)

// PairingCell holds the current pairing code. The transport writes it, the
// web surface reads and watches it. An empty code means no pairing pending.
type PairingCell struct {
	mu          sync.RWMutex
	code        string
	updatedAt   time.Time
	subscribers map[chan string]struct{}
}

// NewPairingCell creates an empty cell.
func NewPairingCell() *PairingCell {
	return &PairingCell{
		subscribers: make(map[chan string]struct{}),
	}
}

// Set publishes a new code to every subscriber. Slow subscribers only ever
// see the latest value.
func (c *PairingCell) Set(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.code = code
	c.updatedAt = time.Now()
	for ch := range c.subscribers {
		select {
		case ch <- code:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- code:
			default:
			}
		}
	}
}

// Clear withdraws the current code.
func (c *PairingCell) Clear() {
	c.Set("")
}

// Get returns the current code and whether one is published.
func (c *PairingCell) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.code, c.code != ""
}

// UpdatedAt returns when the code last changed.
func (c *PairingCell) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Subscribe returns a channel that receives every subsequent change.
func (c *PairingCell) Subscribe() chan string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan string, 1)
	c.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscription.
func (c *PairingCell) Unsubscribe(ch chan string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subscribers[ch]; ok {
		delete(c.subscribers, ch)
		close(ch)
	}
}
