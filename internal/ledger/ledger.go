// Package ledger persists the set of message ids that were already
// published. It is the single source of truth for sent/unsent.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Ledger is a durable sent-id set. Ids are added only after a confirmed
// send, never before.
type Ledger struct {
	mu   sync.Mutex
	path string
	sent map[string]struct{}
	log  zerolog.Logger
}

// Open loads the ledger stored at path. A missing or corrupt file yields an
// empty ledger; corruption never blocks startup.
func Open(path string, log zerolog.Logger) *Ledger {
	l := &Ledger{
		path: path,
		sent: make(map[string]struct{}),
		log:  log,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("path", path).Msg("ledger unreadable, starting empty")
		}
		return l
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("ledger corrupt, starting empty")
		return l
	}
	for _, id := range ids {
		l.sent[id] = struct{}{}
	}
	return l
}

// Contains reports whether id was already published.
func (l *Ledger) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[id]
	return ok
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

// IDs returns all recorded ids in sorted order.
func (l *Ledger) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sortedLocked()
}

// Commit records ids as sent and persists the full set. Re-adding an id is a
// no-op. The in-memory set keeps the ids even when persistence fails, so a
// storage problem costs at most a duplicate repost after a restart instead
// of a lost send; the returned error is that persistence failure, for the
// caller to surface as a durability warning.
func (l *Ledger) Commit(ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.sent[id] = struct{}{}
	}
	if err := l.persistLocked(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (l *Ledger) sortedLocked() []string {
	out := make([]string, 0, len(l.sent))
	for id := range l.sent {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// persistLocked rewrites the whole file through a temp file and rename so a
// crash mid-write cannot leave a half-written ledger behind.
func (l *Ledger) persistLocked() error {
	data, err := json.Marshal(l.sortedLocked())
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
