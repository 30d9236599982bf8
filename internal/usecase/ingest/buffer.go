package ingest

import "sync"

// notificationBuffer accumulates notification matches across a refresh-all
// batch. Drain takes the current contents and replaces them with an empty
// slice atomically, matching the "process-wide last-refresh notifications"
// contract: the external HTTP surface drains it on client poll.
type notificationBuffer struct {
	mu    sync.Mutex
	items []ItemMatch
}

func (b *notificationBuffer) add(m ItemMatch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, m)
}

// Drain returns everything accumulated since the last Drain and clears the
// buffer.
func (b *notificationBuffer) Drain() []ItemMatch {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.items
	b.items = nil
	return drained
}
