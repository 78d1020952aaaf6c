package object

// MarkBits packs the two white tints, black, and the finalized flag into one
// byte, the way lgc.h packs WHITE0BIT/WHITE1BIT/BLACKBIT/FINALIZEDBIT rather
// than using four separate bools: a color test is then one mask-and-compare,
// and the two whites can be swapped by a single XOR at the end of the atomic
// phase.
type MarkBits uint8

const (
	White0 MarkBits = 1 << iota
	White1
	Black
	Finalized

	maskWhites = White0 | White1
	maskColors = White0 | White1 | Black
)

// White is an alias for documentation at call sites that only ever pass one
// of the two white tints (White0/White1), never Black or Finalized.
type White = MarkBits

// OtherWhite returns the white tint not currently in use; swapped into use
// by Registry.FlipWhite at the end of every atomic phase.
func OtherWhite(current MarkBits) MarkBits { return current ^ maskWhites }

func (m MarkBits) IsWhite() bool { return m&maskWhites != 0 }
func (m MarkBits) IsBlack() bool { return m&Black != 0 }
func (m MarkBits) IsGray() bool  { return m&maskColors == 0 }

// IsDead reports whether m carries the "other" white tint relative to the
// collector's current white, i.e. it did not survive the cycle that just
// flipped whites.
func (m MarkBits) IsDead(currentWhite MarkBits) bool {
	other := currentWhite ^ maskWhites
	return m&other&maskWhites != 0
}

func (m MarkBits) IsFinalized() bool { return m&Finalized != 0 }

func (m *MarkBits) setWhite(w MarkBits) { *m = (*m &^ maskColors) | (w & maskWhites) }
func (m *MarkBits) setGray()            { *m &^= maskColors }
func (m *MarkBits) setBlack()           { *m = (*m &^ maskColors) | Black }
func (m *MarkBits) setFinalized(v bool) {
	if v {
		*m |= Finalized
	} else {
		*m &^= Finalized
	}
}

// Age buckets generational objects. Values progress
// strictly forward except on an explicit mode change back to incremental.
type Age uint8

const (
	AgeNew Age = iota
	AgeSurvival
	AgeOld0
	AgeOld1
	AgeOld
	AgeTouched1
	AgeTouched2
)

func (a Age) IsOld() bool { return a >= AgeOld0 }

// Header is embedded (by value) in every collectable object. Next threads
// the object into exactly one heap list (allgc/finobj/tobefnz/fixedgc).
// GCList threads it into at most one gray worklist at a time; it is the zero
// value (nil) whenever the object is not currently linked into gray,
// grayagain, weak, ephemeron, or allweak.
type Header struct {
	Kind   Kind
	Mark   MarkBits
	Age    Age
	Next   Object
	GCList Object
	Size   uintptr // bytes charged against debt at Register, credited back at free
}

// Object is implemented by every concrete collectable value. Header returns
// the embedded intrusive header so heap/mark/sweep can operate generically
// while still type-switching on Kind for the kind-specific payload.
type Object interface {
	Header() *Header
}

func (h *Header) SetWhite(w MarkBits) { h.Mark.setWhite(w) }
func (h *Header) SetGray()            { h.Mark.setGray() }
func (h *Header) SetBlack()           { h.Mark.setBlack() }
func (h *Header) IsWhite() bool       { return h.Mark.IsWhite() }
func (h *Header) IsBlack() bool       { return h.Mark.IsBlack() }
func (h *Header) IsGray() bool        { return h.Mark.IsGray() }
func (h *Header) IsDead(cur MarkBits) bool {
	return h.Mark.IsDead(cur)
}
func (h *Header) SetFinalized(v bool) { h.Mark.setFinalized(v) }
func (h *Header) IsFinalized() bool   { return h.Mark.IsFinalized() }

// InGrayList reports whether the object is currently linked into gray,
// grayagain, weak, ephemeron, or allweak (they share one link field since an
// object is only ever on one of those worklists at a time).
func (h *Header) InGrayList() bool { return h.GCList != nil }

