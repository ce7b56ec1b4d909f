package cayennelpp_test

import (
	"testing"

	"github.com/signalsfoundry/mcsim/codec/cayennelpp"
	"github.com/stretchr/testify/require"
)

func TestEncodeTemperatureChannel(t *testing.T) {
	e := cayennelpp.NewEncoder(0)
	require.NoError(t, e.AddTemperature(1, 22.5))
	require.Equal(t, []byte{1, cayennelpp.TypeTemperature, 0x00, 0xE1}, e.Bytes())
}

func TestEncoderRejectsOverflow(t *testing.T) {
	e := cayennelpp.NewEncoder(3)
	require.ErrorIs(t, e.AddTemperature(1, 1), cayennelpp.ErrBufferFull)
}

func TestEncoderResetClearsBuffer(t *testing.T) {
	e := cayennelpp.NewEncoder(0)
	require.NoError(t, e.AddDigitalInput(1, 1))
	require.NotEmpty(t, e.Bytes())
	e.Reset()
	require.Empty(t, e.Bytes())
}
