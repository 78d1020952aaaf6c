// Package object defines the closed set of collectable object kinds and the
// intrusive header every one of them embeds. The set is fixed: a new kind
// never appears at runtime, so every traversal, free, and barrier site in
// package gc/mark/sweep switches over Kind exhaustively.
package object

// Kind tags the concrete shape behind a Header.
type Kind uint8

const (
	KindShortString Kind = iota
	KindLongString
	KindTable
	KindUserData
	KindProto
	KindClosureGo
	KindClosureLua
	KindUpvalue
	KindThread
)

func (k Kind) String() string {
	switch k {
	case KindShortString:
		return "short-string"
	case KindLongString:
		return "long-string"
	case KindTable:
		return "table"
	case KindUserData:
		return "userdata"
	case KindProto:
		return "proto"
	case KindClosureGo:
		return "closure-go"
	case KindClosureLua:
		return "closure-lua"
	case KindUpvalue:
		return "upvalue"
	case KindThread:
		return "thread"
	default:
		return "kind?"
	}
}

// IsString reports whether k is either string kind; strings never gray, they
// mark black directly.
func (k Kind) IsString() bool {
	return k == KindShortString || k == KindLongString
}

// CanGray reports whether objects of this kind are ever pushed onto a gray
// worklist. Userdata is a partial exception: an instance grays only when it
// carries user values, which UserData.HasUserValues (on the instance) reports;
// this method answers the kind-level question used for sanity checks.
func (k Kind) CanGray() bool {
	switch k {
	case KindTable, KindUserData, KindProto, KindClosureGo, KindClosureLua, KindThread:
		return true
	default:
		return false
	}
}
