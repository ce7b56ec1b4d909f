package hw_test

import (
	"testing"

	"github.com/signalsfoundry/mcsim/hw"
	"github.com/stretchr/testify/require"
)

func TestSerialRXFIFO(t *testing.T) {
	s := hw.NewSerial()
	s.InjectRX([]byte("ab"))
	s.InjectRX([]byte("c"))
	require.Equal(t, 3, s.Available())

	b, ok := s.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte('a'), b)
	b, ok = s.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte('b'), b)
}

func TestSerialTXAndLogAreSeparate(t *testing.T) {
	s := hw.NewSerial()
	s.Write([]byte{0x01, 0x02})
	s.Printf("boot ok\n")

	require.Equal(t, []byte{0x01, 0x02}, s.DrainTX())
	require.Equal(t, "boot ok\n", string(s.DrainLog()))
	require.Nil(t, s.DrainTX())
	require.Nil(t, s.DrainLog())
}

func TestSerialPeekDoesNotConsume(t *testing.T) {
	s := hw.NewSerial()
	s.InjectRX([]byte("x"))
	b, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, byte('x'), b)
	require.Equal(t, 1, s.Available())
}
