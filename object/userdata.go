package object

// UserData wraps a host-owned payload. An instance with zero
// UserValues marks its metatable and goes straight to black without ever
// being pushed to gray; an instance with one or more UserValues is treated
// like any other aggregate and is pushed to gray. HasUserValues is the
// instance-level test propagatemark/reallymarkobject need, since the kind
// alone (KindUserData) does not determine it.
type UserData struct {
	header     Header
	Metatable  *Table
	UserValues []Value
	Data       interface{}
}

func (u *UserData) Header() *Header { return &u.header }

func (u *UserData) HasUserValues() bool { return len(u.UserValues) > 0 }

func NewUserData(data interface{}) *UserData {
	return &UserData{header: Header{Kind: KindUserData}, Data: data}
}
