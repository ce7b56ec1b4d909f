package hw_test

import (
	"testing"

	"github.com/signalsfoundry/mcsim/hw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNGZeroSeedBecomesOne(t *testing.T) {
	r0 := hw.NewRNG(0)
	r1 := hw.NewRNG(1)
	require.Equal(t, r1.Next(), r0.Next())
}

func TestRNGDeterministic(t *testing.T) {
	a := hw.NewRNG(42)
	b := hw.NewRNG(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestRNGFillMatchesNextByteByByte(t *testing.T) {
	a := hw.NewRNG(7)
	b := hw.NewRNG(7)
	buf := make([]byte, 16)
	a.Fill(buf)
	for i := range buf {
		assert.Equal(t, byte(b.Next()&0xFF), buf[i])
	}
}
