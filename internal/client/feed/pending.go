package feed

import (
	"slices"
	"sync"
)

// Kind is the mutation kind an id is pending under.
type Kind int

const (
	KindUpdate Kind = iota
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Pending tracks ids with an unsettled mutation. Marks are counted, so two
// overlapping updates of one id keep it pending until both settle.
type Pending struct {
	mu  sync.RWMutex
	ids map[Kind]map[int64]int
}

func NewPending() *Pending {
	return &Pending{ids: make(map[Kind]map[int64]int)}
}

func (p *Pending) Mark(id int64, kind Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.ids[kind]
	if m == nil {
		m = make(map[int64]int)
		p.ids[kind] = m
	}
	m[id]++
}

func (p *Pending) Unmark(id int64, kind Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.ids[kind]
	if m[id] <= 1 {
		delete(m, id)
		return
	}
	m[id]--
}

// Has reports whether id is pending under kind.
func (p *Pending) Has(id int64, kind Kind) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ids[kind][id] > 0
}

// IsPending reports whether id is pending under any kind.
func (p *Pending) IsPending(id int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.ids {
		if m[id] > 0 {
			return true
		}
	}
	return false
}

// IDs is the sorted union across kinds.
func (p *Pending) IDs() []int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[int64]struct{})
	for _, m := range p.ids {
		for id := range m {
			seen[id] = struct{}{}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
