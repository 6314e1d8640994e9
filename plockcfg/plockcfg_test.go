package plockcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugDefaultsOff(t *testing.T) {
	assert.False(t, Debug())
}

func TestSetDebugToggles(t *testing.T) {
	SetDebug(true)
	defer SetDebug(false)
	assert.True(t, Debug())
}

func TestSpinCapRoundTrips(t *testing.T) {
	orig := SpinCap()
	defer SetSpinCap(orig)

	SetSpinCap(256)
	assert.Equal(t, 256, SpinCap())
}
