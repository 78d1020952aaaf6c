package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableSetGetRoundTrip(t *testing.T) {
	tbl := NewTable()
	key := FromNumber(1)
	tbl.Set(key, FromNumber(42))

	got := tbl.Get(key)
	assert.Equal(t, VNumber, got.Kind)
	assert.Equal(t, float64(42), got.Num)
}

func TestTableSetNilTombstonesExistingEntry(t *testing.T) {
	tbl := NewTable()
	key := FromNumber(1)
	tbl.Set(key, FromBool(true))
	tbl.Set(key, Nil)

	assert.True(t, tbl.Get(key).IsEmpty())
	var dead bool
	for _, n := range tbl.Nodes {
		if n.Dead {
			dead = true
		}
	}
	assert.True(t, dead, "clearing an existing key tombstones the node rather than removing it")
}

func TestTableSetNilOnMissingKeyIsNoop(t *testing.T) {
	tbl := NewTable()
	tbl.Set(FromNumber(1), Nil)
	assert.Empty(t, tbl.Nodes)
}

func TestTableModeDefaultsStrongWithNoMetatable(t *testing.T) {
	tbl := NewTable()
	weakKeys, weakValues := tbl.Mode()
	assert.False(t, weakKeys)
	assert.False(t, weakValues)
}

func TestTableModeDecodesWeaknessString(t *testing.T) {
	tbl := NewTable()
	mt := NewTable()
	mt.Set(FromObject(internedMode), FromObject(NewShortString("kv", fnvHash("kv"))))
	tbl.Metatable = mt

	weakKeys, weakValues := tbl.Mode()
	assert.True(t, weakKeys)
	assert.True(t, weakValues)
}

func TestTableModeIgnoresNonStringModeValue(t *testing.T) {
	tbl := NewTable()
	mt := NewTable()
	mt.Set(FromObject(internedMode), FromNumber(1))
	tbl.Metatable = mt

	weakKeys, weakValues := tbl.Mode()
	assert.False(t, weakKeys)
	assert.False(t, weakValues)
}
