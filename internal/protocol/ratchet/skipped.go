package ratchet

import (
	"parley/internal/domain"
	"parley/internal/util/memzero"
)

// Default retention limits for skipped message keys.
const (
	defaultSkippedPerKey = 256
	defaultSkippedTotal  = 1024
)

type skippedRef struct {
	pub domain.X25519Public
	n   uint32
}

// skippedKeys caches message keys for chain positions that were advanced past
// without being consumed. Eviction is oldest-first, with both a per-remote-key
// and a total capacity; entries for superseded ratchet keys age out under the
// same policy rather than being flushed when the peer rotates.
type skippedKeys struct {
	perKeyCap int
	totalCap  int

	keys   map[skippedRef]domain.MessageKey
	order  []skippedRef
	perKey map[domain.X25519Public]int
}

func newSkippedKeys(perKeyCap, totalCap int) *skippedKeys {
	return &skippedKeys{
		perKeyCap: perKeyCap,
		totalCap:  totalCap,
		keys:      make(map[skippedRef]domain.MessageKey),
		perKey:    make(map[domain.X25519Public]int),
	}
}

// put caches mk for (pub, n), evicting the oldest entries if either limit is
// exceeded. Storing the same position twice replaces the entry in place.
func (s *skippedKeys) put(pub domain.X25519Public, n uint32, mk domain.MessageKey) {
	ref := skippedRef{pub: pub, n: n}
	if _, ok := s.keys[ref]; ok {
		s.keys[ref] = mk
		return
	}
	for s.perKey[pub] >= s.perKeyCap {
		s.evictOldest(&pub)
	}
	for len(s.order) >= s.totalCap {
		s.evictOldest(nil)
	}
	s.keys[ref] = mk
	s.order = append(s.order, ref)
	s.perKey[pub]++
}

// take removes and returns the cached key for (pub, n). Lookup and removal
// are one operation so a cached key can never be handed out twice.
func (s *skippedKeys) take(pub domain.X25519Public, n uint32) (domain.MessageKey, bool) {
	ref := skippedRef{pub: pub, n: n}
	mk, ok := s.keys[ref]
	if !ok {
		return domain.MessageKey{}, false
	}
	s.remove(ref)
	return mk, true
}

// evictOldest drops the oldest entry, restricted to pub when non-nil. An
// evicted key makes that single message permanently undecryptable.
func (s *skippedKeys) evictOldest(pub *domain.X25519Public) {
	for _, ref := range s.order {
		if pub != nil && ref.pub != *pub {
			continue
		}
		mk := s.keys[ref]
		memzero.Zero(mk[:])
		s.remove(ref)
		return
	}
}

func (s *skippedKeys) remove(ref skippedRef) {
	delete(s.keys, ref)
	for i := range s.order {
		if s.order[i] == ref {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if c := s.perKey[ref.pub]; c <= 1 {
		delete(s.perKey, ref.pub)
	} else {
		s.perKey[ref.pub] = c - 1
	}
}

func (s *skippedKeys) len() int { return len(s.order) }

// clone deep-copies the store so a failed decrypt never mutates it.
func (s *skippedKeys) clone() *skippedKeys {
	c := newSkippedKeys(s.perKeyCap, s.totalCap)
	c.order = append(c.order, s.order...)
	for ref, mk := range s.keys {
		c.keys[ref] = mk
	}
	for pub, n := range s.perKey {
		c.perKey[pub] = n
	}
	return c
}
