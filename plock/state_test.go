package plock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsForDoNotOverlap(t *testing.T) {
	f32 := fieldsFor[uint32]()
	assert.Zero(t, f32.rAny&f32.sAny)
	assert.Zero(t, f32.rAny&f32.wAny)
	assert.Zero(t, f32.sAny&f32.wAny)

	f64 := fieldsFor[uint64]()
	assert.Zero(t, f64.rAny&f64.sAny)
	assert.Zero(t, f64.rAny&f64.wAny)
	assert.Zero(t, f64.sAny&f64.wAny)
}

func TestFieldsForReserveLowBits(t *testing.T) {
	f := fieldsFor[uint64]()
	assert.Zero(t, f.r1&0b11, "r1 must sit above the two reserved tag bits")
	assert.Equal(t, uint64(1<<reservedBits), f.r1)
}

func TestReadersAndWritersRoundTrip(t *testing.T) {
	f := fieldsFor[uint64]()

	word := f.r1*3 + f.w1*2
	assert.Equal(t, uint64(3), f.readers(word))
	assert.Equal(t, uint64(2), f.writers(word))
}

func TestWidthOf(t *testing.T) {
	assert.Equal(t, 32, widthOf[uint32]())
	assert.Equal(t, 64, widthOf[uint64]())
}

func TestLoadTagStoreTagDoesNotDisturbState(t *testing.T) {
	var l Lock[uint64]

	r := l.TakeR()
	l.StoreTag(0b10)
	assert.Equal(t, uint64(0b10), l.LoadTag())

	r2, ok := l.TryR()
	assert.True(t, ok, "tag bits must not be mistaken for a conflicting field")

	r.Drop()
	r2.Drop()
	assert.Equal(t, uint64(0b10), l.LoadTag(), "dropping holds must not disturb the tag")
}

func TestStoreTagMasksToTwoBits(t *testing.T) {
	var l Lock[uint32]
	l.StoreTag(0xFF)
	assert.Equal(t, uint32(0b11), l.LoadTag())
}
