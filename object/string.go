package object

// StringObj backs both the short-string (interned) and long-string kinds;
// Header.Kind distinguishes them. Strings never gray — reallymarkobject
// tints them black immediately — so they carry no GCList use
// beyond the zero value.
type StringObj struct {
	header Header
	Data   string
	// Hash is computed once at creation and used both for table indexing
	// and as the short-string intern table's bucket key.
	Hash uint64
}

func (s *StringObj) Header() *Header { return &s.header }

func NewShortString(data string, hash uint64) *StringObj {
	return &StringObj{header: Header{Kind: KindShortString}, Data: data, Hash: hash}
}

func NewLongString(data string, hash uint64) *StringObj {
	return &StringObj{header: Header{Kind: KindLongString}, Data: data, Hash: hash}
}
