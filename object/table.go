package object

// HashNode is one slot of a table's hash part. Dead marks a tombstoned key
// left behind by weak-table clearing: the original
// keeps the slot rather than deleting it outright so open-addressing probe
// chains through it remain valid (giveDeadKey in lgc.c). This module's table
// is chained rather than open-addressed, so Dead exists purely to preserve
// that same "never observe a cleared key as absent mid-scan" semantics for
// any iterator holding a *HashNode.
type HashNode struct {
	Key  Value
	Val  Value
	Dead bool
}

// Clear tombstones the node: key and value become unobservable to the
// mutator but the node is not unlinked.
func (n *HashNode) Clear() {
	n.Val = Nil
	n.Key = Nil
	n.Dead = true
}

// Table is the one aggregate, general-purpose collectable kind: it backs
// ordinary tables, weak tables, and ephemeron tables, distinguished only by
// the __mode string found on Metatable (decoded by Mode below).
type Table struct {
	header    Header
	Metatable *Table
	Array     []Value
	Nodes     []*HashNode
	index     map[hashKey]*HashNode
}

func (t *Table) Header() *Header { return &t.header }

func NewTable() *Table {
	return &Table{header: Header{Kind: KindTable}, index: make(map[hashKey]*HashNode)}
}

// hashKey is a comparable projection of Value suitable for use as a Go map
// key; object identity is used for collectable keys (table/string/etc. are
// never value-equal unless identical).
type hashKey struct {
	kind ValueKind
	num  float64
	b    bool
	obj  Object
}

func keyOf(v Value) hashKey { return hashKey{kind: v.Kind, num: v.Num, b: v.Bool, obj: v.Obj} }

// Get performs a plain field lookup. It never triggers a write barrier — it
// is also used internally by the marker to read __mode off a metatable,
// which the collector is always allowed to do without barrier participation.
func (t *Table) Get(k Value) Value {
	if n, ok := t.index[keyOf(k)]; ok && !n.Dead {
		return n.Val
	}
	return Nil
}

// Set installs or overwrites a hash entry. Setting a key to Nil clears it
// (tombstones) rather than removing the node, matching HashNode.Clear.
func (t *Table) Set(k, v Value) {
	key := keyOf(k)
	if n, ok := t.index[key]; ok {
		if v.IsEmpty() {
			n.Clear()
			return
		}
		n.Key, n.Val, n.Dead = k, v, false
		return
	}
	if v.IsEmpty() {
		return
	}
	n := &HashNode{Key: k, Val: v}
	t.Nodes = append(t.Nodes, n)
	t.index[key] = n
}

const modeKey = "__mode"

// Mode decodes the table's weakness from its metatable's __mode string, as
// propagatemark does once per traversal before dispatching to the strong /
// weak-value / ephemeron / all-weak cases.
func (t *Table) Mode() (weakKeys, weakValues bool) {
	if t.Metatable == nil {
		return false, false
	}
	modeVal := t.Metatable.Get(Value{Kind: VObject, Obj: internedMode})
	if !modeVal.IsObject() {
		return false, false
	}
	s, ok := modeVal.Obj.(*StringObj)
	if !ok {
		return false, false
	}
	for _, c := range s.Data {
		switch c {
		case 'k':
			weakKeys = true
		case 'v':
			weakValues = true
		}
	}
	return
}

// internedMode is the well-known "__mode" key string shared by every table
// metatable. It is a package-level value that is never registered on any
// heap list, so the collector never marks, sweeps, or frees it, and it can
// be compared by identity the way interned short strings are throughout
// this module.
var internedMode = NewShortString(modeKey, fnvHash(modeKey))

func fnvHash(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
