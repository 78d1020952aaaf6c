package heap

import "github.com/lumenvm/gc/object"

// StringTable interns short strings by hash, mirroring the original's
// array-of-buckets string cache (strt in lstate.h) closely enough to need
// the same two operations the GC touches: clearing dead entries during the
// atomic phase and shrinking when the load factor drops too low.
type StringTable struct {
	buckets [][]*object.StringObj
	count   int
}

func NewStringTable() *StringTable {
	return &StringTable{buckets: make([][]*object.StringObj, 32)}
}

func (t *StringTable) bucketIndex(hash uint64) int { return int(hash % uint64(len(t.buckets))) }

// Intern returns the existing interned string for data if present, else
// nil. Callers create a new *object.StringObj and call Insert on a miss.
func (t *StringTable) Intern(data string, hash uint64) *object.StringObj {
	idx := t.bucketIndex(hash)
	for _, s := range t.buckets[idx] {
		if s.Data == data {
			return s
		}
	}
	return nil
}

func (t *StringTable) Insert(s *object.StringObj) {
	idx := t.bucketIndex(s.Hash)
	t.buckets[idx] = append(t.buckets[idx], s)
	t.count++
}

// Remove drops s from the intern table; called when the sweeper frees a
// short string so it can never be handed out by Intern again.
func (t *StringTable) Remove(s *object.StringObj) {
	idx := t.bucketIndex(s.Hash)
	bucket := t.buckets[idx]
	for i, cand := range bucket {
		if cand == s {
			bucket[i] = bucket[len(bucket)-1]
			t.buckets[idx] = bucket[:len(bucket)-1]
			t.count--
			return
		}
	}
}

// ClearDead removes any interned string for which Header.IsDead(currentWhite)
// holds, i.e. one tinted the white other than currentWhite — step 15 of the
// atomic phase. It runs before the sweeper reaches these strings, because a
// short string that dies must stop being handed out by Intern (see
// DESIGN.md's note on cache/flip ordering). The atomic phase calls it before
// FlipWhite, passing the other white, so the strings removed are those still
// tinted this cycle's unmarked white.
func (t *StringTable) ClearDead(currentWhite object.MarkBits) {
	for i, bucket := range t.buckets {
		kept := bucket[:0]
		for _, s := range bucket {
			if s.Header().IsDead(currentWhite) {
				t.count--
				continue
			}
			kept = append(kept, s)
		}
		t.buckets[i] = kept
	}
}

// LoadFactor returns count / number of buckets.
func (t *StringTable) LoadFactor() float64 {
	if len(t.buckets) == 0 {
		return 0
	}
	return float64(t.count) / float64(len(t.buckets))
}

// MaybeShrink halves the bucket count if load factor has dropped below 25%,
// matching the sweep-end state's "possibly shrink the string intern table"
// step. Never shrinks below a floor of 32 buckets.
func (t *StringTable) MaybeShrink() {
	if t.LoadFactor() >= 0.25 || len(t.buckets) <= 32 {
		return
	}
	newSize := len(t.buckets) / 2
	if newSize < 32 {
		newSize = 32
	}
	old := t.buckets
	t.buckets = make([][]*object.StringObj, newSize)
	for _, bucket := range old {
		for _, s := range bucket {
			idx := t.bucketIndex(s.Hash)
			t.buckets[idx] = append(t.buckets[idx], s)
		}
	}
}
