package webui

import (
	"sync"
	"time"

	"github.com/papercomputeco/hospitalchat/pkg/chat"
)

// transcripts maps a browser session ID to its transcript. Each browser
// session sees only its own turns.
type transcripts struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*transcriptEntry
}

type transcriptEntry struct {
	transcript *chat.Transcript
	lastSeen   time.Time
}

func newTranscripts(ttl time.Duration) *transcripts {
	return &transcripts{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]*transcriptEntry{},
	}
}

// get returns the transcript for id, creating it on first use.
func (t *transcripts) get(id string) *chat.Transcript {
	now := t.now()

	t.mu.RLock()
	entry, ok := t.entries[id]
	t.mu.RUnlock()

	if ok {
		t.mu.Lock()
		entry.lastSeen = now
		t.mu.Unlock()
		return entry.transcript
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// another request for the same session may have won the race
	if entry, ok := t.entries[id]; ok {
		entry.lastSeen = now
		return entry.transcript
	}

	t.evictLocked(now)

	entry = &transcriptEntry{transcript: chat.NewTranscript(), lastSeen: now}
	t.entries[id] = entry
	return entry.transcript
}

// peek returns the transcript for id without creating one.
func (t *transcripts) peek(id string) (*chat.Transcript, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	return entry.transcript, true
}

func (t *transcripts) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *transcripts) evictLocked(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	for id, entry := range t.entries {
		if now.Sub(entry.lastSeen) > t.ttl {
			delete(t.entries, id)
		}
	}
}
