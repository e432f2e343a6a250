package run

import (
	"sync"
	"time"

	"github.com/ladrtools/proverd/internal/program"
)

// Registry is the single source of truth for all tracked invocations. It is
// the only place records are created, read, or mutated, and it performs no
// I/O: its lock is held only for the duration of field access, never across
// an OS call.
type Registry struct {
	mu    sync.Mutex
	next  uint64
	recs  map[uint64]*Record
	order []uint64
}

func NewRegistry() *Registry {
	return &Registry{recs: make(map[uint64]*Record)}
}

// Create adds a new record in the Ready state and returns its id. Ids are
// assigned monotonically and never reused for the registry's lifetime.
func (g *Registry) Create(p program.Type, input string, options map[string]any) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	id := g.next
	rec := &Record{
		ID:        id,
		Program:   p,
		Input:     input,
		State:     StateReady,
		StartedAt: time.Now(),
	}
	if len(options) > 0 {
		rec.Options = make(map[string]any, len(options))
		for k, v := range options {
			rec.Options[k] = v
		}
	}
	g.recs[id] = rec
	g.order = append(g.order, id)
	return id
}

// Get returns a deep snapshot of one record. Concurrent readers never
// observe a partially-written record.
func (g *Registry) Get(id uint64) (Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

// List returns all ids in creation order.
func (g *Registry) List() []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]uint64, len(g.order))
	copy(out, g.order)
	return out
}

// Snapshot returns deep copies of all records in creation order.
func (g *Registry) Snapshot() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Record, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.recs[id].clone())
	}
	return out
}

// Mutate applies fn to one record atomically with respect to all other
// registry operations on the same id. If fn returns an error the record is
// considered unchanged; fn must not block or perform I/O.
func (g *Registry) Mutate(id uint64, fn func(*Record) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.recs[id]
	if !ok {
		return ErrNotFound
	}
	return fn(rec)
}
