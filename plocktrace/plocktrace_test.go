package plocktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetHandlerNilDisables(t *testing.T) {
	SetHandler(nil)
	assert.False(t, Enabled())

	var got *Event
	SetHandler(func(e Event) { got = &e })
	assert.True(t, Enabled())

	Emit(Event{Op: OpTakeR, Width: 64})
	assert.NotNil(t, got)
	assert.Equal(t, OpTakeR, got.Op)

	SetHandler(nil)
	assert.False(t, Enabled())
}

func TestEmitNoopWithoutHandler(t *testing.T) {
	SetHandler(nil)
	assert.NotPanics(t, func() { Emit(Event{Op: OpDropR}) })
}
