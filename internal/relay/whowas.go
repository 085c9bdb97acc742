package relay

import (
	"strings"
	"sync"
	"time"
)

// whowasEntry is a single historical-nick record kept for WHOWAS lookups
// after a user quits or changes nick.
type whowasEntry struct {
	Nick string
	User string
	Host string
	When time.Time
}

// whowasRepository is a bounded per-nick history: a mutex-guarded map of
// entry slices, each trimmed to the newest cap entries. It does not go
// through repository.Operations like the nick and channel tables do.
type whowasRepository struct {
	mu      sync.Mutex
	cap     int
	history map[string][]whowasEntry
}

func newWhowasRepository(capacity int) *whowasRepository {
	return &whowasRepository{cap: capacity, history: make(map[string][]whowasEntry)}
}

func (w *whowasRepository) record(nick, user, host string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := strings.ToLower(nick)
	entries := w.history[key]
	entries = append(entries, whowasEntry{Nick: nick, User: user, Host: host, When: time.Now()})
	if len(entries) > w.cap {
		entries = entries[len(entries)-w.cap:]
	}
	w.history[key] = entries
}

func (w *whowasRepository) lookup(nick string) []whowasEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	entries := w.history[strings.ToLower(nick)]
	out := make([]whowasEntry, len(entries))
	copy(out, entries)
	return out
}
