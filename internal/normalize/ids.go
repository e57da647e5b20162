package normalize

import "fmt"

// maxRandomAttempts bounds retries against a colliding IDFunc before falling
// back to a counter.
const maxRandomAttempts = 8

// idPool hands out ids that are unique across every kind in one bill:
// participants, items and charges share a single namespace.
type idPool struct {
	gen       IDFunc
	reserved  map[string]bool
	forbidden map[string]bool
	used      map[string]bool
	counters  map[string]int
}

func (n *Normalizer) newIDPool() *idPool {
	gen := n.NewID
	if gen == nil {
		gen = RandomID
	}
	return &idPool{
		gen:       gen,
		reserved:  make(map[string]bool),
		forbidden: make(map[string]bool),
		used:      make(map[string]bool),
		counters:  make(map[string]int),
	}
}

// reserve marks an id supplied by the payload so generated ids never shadow it.
func (p *idPool) reserve(id string) {
	if id != "" {
		p.reserved[id] = true
	}
}

// forbid marks an id that may never be used.
func (p *idPool) forbid(id string) {
	p.forbidden[id] = true
}

// claim returns id if it is usable and not yet taken by any kind, otherwise a
// fresh id with the given prefix.
func (p *idPool) claim(prefix, id string) string {
	if id != "" && !p.used[id] && !p.forbidden[id] {
		p.used[id] = true
		return id
	}
	return p.fresh(prefix)
}

func (p *idPool) fresh(prefix string) string {
	for i := 0; i < maxRandomAttempts; i++ {
		if id := p.gen(prefix); p.available(id) {
			p.used[id] = true
			return id
		}
	}
	for {
		p.counters[prefix]++
		if id := fmt.Sprintf("%s-%d", prefix, p.counters[prefix]); p.available(id) {
			p.used[id] = true
			return id
		}
	}
}

func (p *idPool) available(id string) bool {
	return id != "" && !p.used[id] && !p.reserved[id] && !p.forbidden[id]
}
