// Package incremental memoizes the stages of a generation pass.
//
// Every stage result is stored under a key (a declaration or symbol
// identifier) together with the fingerprint of the input it was computed
// from. A later pass that presents the same key and fingerprint gets the
// stored result back without recomputing it.
//
// A pass opens with [Group.Begin] and ends with either [Group.Commit], which
// keeps exactly the entries touched during the pass, or [Group.Abort], which
// forgets the pass and leaves the previous generation in place.
package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Digest is a SHA-256 fingerprint.
type Digest [sha256.Size]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Fingerprint returns the SHA-256 digest of the msgpack encoding of v. Map
// keys are sorted so equal values always produce equal digests.
func Fingerprint(v any) (Digest, error) {
	var d Digest
	h := sha256.New()
	enc := msgpack.NewEncoder(h)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return d, fmt.Errorf("fingerprint: %w", err)
	}
	copy(d[:], h.Sum(nil))
	return d, nil
}

// MustFingerprint is like Fingerprint but panics on error. Use it only for
// values built from plain data.
func MustFingerprint(v any) Digest {
	d, err := Fingerprint(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Stats counts how a stage served its lookups during one pass.
type Stats struct {
	Computed int
	Reused   int
}

// Stage is one memoized step of a pass.
type Stage interface {
	Name() string
	Begin()
	Commit()
	Abort()
	Stats() Stats
}

type entry[V any] struct {
	digest Digest
	value  V
}

// Memo is a stage whose results have type V. It is safe for concurrent use
// within a pass.
type Memo[V any] struct {
	name string

	mu    sync.Mutex
	prev  map[string]entry[V]
	next  map[string]entry[V]
	stats Stats
}

// NewMemo returns an empty stage.
func NewMemo[V any](name string) *Memo[V] {
	return &Memo[V]{name: name, prev: make(map[string]entry[V])}
}

// Name returns the stage name.
func (m *Memo[V]) Name() string { return m.name }

// Begin starts a new pass.
func (m *Memo[V]) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = make(map[string]entry[V])
	m.stats = Stats{}
}

// Commit makes the entries touched during the pass the only ones kept.
func (m *Memo[V]) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next != nil {
		m.prev = m.next
		m.next = nil
	}
}

// Abort discards the pass.
func (m *Memo[V]) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = nil
}

// Stats returns the counters of the current or last pass.
func (m *Memo[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Len returns the number of committed entries.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prev)
}

// Get returns the value stored for key when it was computed from an input
// with the same digest, and otherwise calls compute and records its result.
// Errors are returned as-is and nothing is recorded. compute runs without
// the lock held.
func (m *Memo[V]) Get(key string, digest Digest, compute func() (V, error)) (V, error) {
	m.mu.Lock()
	if m.next == nil {
		m.mu.Unlock()
		panic("incremental: Get called outside a pass on stage " + m.name)
	}
	if e, ok := m.next[key]; ok && e.digest == digest {
		m.stats.Reused++
		m.mu.Unlock()
		return e.value, nil
	}
	if e, ok := m.prev[key]; ok && e.digest == digest {
		m.next[key] = e
		m.stats.Reused++
		m.mu.Unlock()
		return e.value, nil
	}
	m.mu.Unlock()

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next != nil {
		m.next[key] = entry[V]{digest: digest, value: v}
	}
	m.stats.Computed++
	return v, nil
}

// Group runs Begin, Commit and Abort over several stages together.
type Group []Stage

// Begin starts a pass on every stage.
func (g Group) Begin() {
	for _, s := range g {
		s.Begin()
	}
}

// Commit commits every stage.
func (g Group) Commit() {
	for _, s := range g {
		s.Commit()
	}
}

// Abort aborts every stage.
func (g Group) Abort() {
	for _, s := range g {
		s.Abort()
	}
}

// Stats returns the counters of every stage by name.
func (g Group) Stats() map[string]Stats {
	out := make(map[string]Stats, len(g))
	for _, s := range g {
		out[s.Name()] = s.Stats()
	}
	return out
}
