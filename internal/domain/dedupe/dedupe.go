// Package dedupe tracks in-flight simulation jobs so identical requests are
// not queued twice.
package dedupe

import (
	"container/list"
	"context"
	"strconv"
	"sync"
)

const defaultMaxSize = 4096

// Deduper records job keys to ensure a job is queued at most once while it is
// pending.
type Deduper interface {
	// SeenAndRecord atomically checks if key is recorded and records it if not.
	// Returns true if key was already present.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases a key once its job finished or could not be queued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// RoundKey identifies a round simulation job.
func RoundKey(leagueID string, round int) string {
	return "round:" + leagueID + ":" + strconv.Itoa(round)
}

// SeasonKey identifies a remaining-season simulation job.
func SeasonKey(leagueID string) string {
	return "season:" + leagueID
}

// inMemoryDeduper keeps keys in insertion order. When bounded, the oldest key
// is evicted to make room.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int // <= 0 means unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
