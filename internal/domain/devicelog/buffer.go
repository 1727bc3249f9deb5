package devicelog

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is used when a non-positive capacity is configured.
const DefaultCapacity = 50

// IngestWindow bounds how many trailing source records one Ingest call considers.
const IngestWindow = 10

// Buffer keeps the most recent entries, newest first.
type Buffer struct {
	mu         sync.RWMutex
	entries    []Entry
	cap        int
	lastUpdate time.Time
	now        func() time.Time
}

// NewBuffer builds an empty buffer holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		cap:     capacity,
		entries: make([]Entry, 0, capacity),
		now:     time.Now,
	}
}

// Record stamps and prepends a locally originated entry. Callers validate the message.
func (b *Buffer) Record(message, device string, logType Type) Entry {
	device = strings.TrimSpace(device)
	if device == "" {
		device = DefaultDevice
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	entry := Entry{
		ID:        uuid.New(),
		Timestamp: b.now(),
		Message:   message,
		Type:      ParseType(string(logType)),
		Source:    SourceTile,
		Device:    device,
	}
	b.prependLocked(entry)
	b.truncateLocked()
	b.lastUpdate = entry.Timestamp
	return entry
}

// Seed records startup entries in the given order, so the last one ends up newest.
func (b *Buffer) Seed(entries ...Entry) {
	for _, e := range entries {
		b.Record(e.Message, e.Device, e.Type)
	}
}

// Ingest merges external records, skipping any whose message is already buffered.
// Only the last IngestWindow records are considered, in source order.
func (b *Buffer) Ingest(records []Record) int {
	if len(records) > IngestWindow {
		records = records[len(records)-IngestWindow:]
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]struct{}, len(b.entries)+len(records))
	for _, e := range b.entries {
		seen[e.Message] = struct{}{}
	}

	added := 0
	now := b.now()
	for _, rec := range records {
		msg := ExtractMessage(rec)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		b.prependLocked(Entry{
			ID:        uuid.New(),
			Timestamp: now,
			Message:   msg,
			Type:      ExtractType(rec),
			Source:    SourceExternal,
			Device:    ExtractDevice(rec),
		})
		added++
	}
	b.truncateLocked()
	if added > 0 {
		b.lastUpdate = now
	}
	return added
}

// Snapshot returns a copy of up to n entries, newest first.
func (b *Buffer) Snapshot(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Entry, n)
	copy(out, b.entries[:n])
	return out
}

// Size reports the current entry count.
func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Capacity reports the configured bound.
func (b *Buffer) Capacity() int {
	return b.cap
}

// LastUpdate reports when the buffer last changed; zero if never.
func (b *Buffer) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate
}

// Clear drops every entry and returns how many were removed.
func (b *Buffer) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.entries)
	b.entries = make([]Entry, 0, b.cap)
	b.lastUpdate = b.now()
	return n
}

func (b *Buffer) prependLocked(e Entry) {
	b.entries = append(b.entries, Entry{})
	copy(b.entries[1:], b.entries)
	b.entries[0] = e
}

func (b *Buffer) truncateLocked() {
	if len(b.entries) > b.cap {
		clear(b.entries[b.cap:])
		b.entries = b.entries[:b.cap]
	}
}
