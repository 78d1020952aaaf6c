package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkBitsColorTransitions(t *testing.T) {
	var m MarkBits
	m.setWhite(White0)
	assert.True(t, m.IsWhite())
	assert.False(t, m.IsBlack())

	m.setGray()
	assert.False(t, m.IsWhite())
	assert.False(t, m.IsBlack())
	assert.True(t, m.IsGray())

	m.setBlack()
	assert.True(t, m.IsBlack())
	assert.False(t, m.IsWhite())
}

func TestOtherWhiteIsInvolution(t *testing.T) {
	assert.Equal(t, White1, OtherWhite(White0))
	assert.Equal(t, White0, OtherWhite(OtherWhite(White0)))
}

func TestIsDeadTracksCurrentWhite(t *testing.T) {
	var m MarkBits
	m.setWhite(White0)

	assert.False(t, m.IsDead(White0), "tinted the current white: alive")
	assert.True(t, m.IsDead(White1), "tinted the other white relative to current: dead")
}

func TestFinalizedFlagIndependentOfColor(t *testing.T) {
	var m MarkBits
	m.setWhite(White0)
	m.setFinalized(true)

	assert.True(t, m.IsFinalized())
	assert.True(t, m.IsWhite(), "finalized bit must not disturb color")

	m.setBlack()
	assert.True(t, m.IsFinalized(), "color transition must not clear finalized")
}

func TestHeaderInGrayList(t *testing.T) {
	h := &Header{}
	assert.False(t, h.InGrayList())
	h.GCList = &StringObj{}
	assert.True(t, h.InGrayList())
}
