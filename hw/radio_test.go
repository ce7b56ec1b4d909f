package hw_test

import (
	"testing"

	"github.com/signalsfoundry/mcsim/hw"
	"github.com/stretchr/testify/require"
)

func TestRadioStartSendRawRejectsWhilePending(t *testing.T) {
	r := hw.NewRadio()
	r.Configure(915.0, 125.0, 7, 5, 20)
	require.NoError(t, r.StartSendRaw([]byte("hello")))
	require.True(t, r.HasPendingTx())
	require.ErrorIs(t, r.StartSendRaw([]byte("again")), hw.ErrTXBusy)

	r.NotifyTXComplete()
	require.False(t, r.HasPendingTx())
	require.NoError(t, r.StartSendRaw([]byte("hello again")))
}

func TestRadioFrameTooLarge(t *testing.T) {
	r := hw.NewRadio()
	buf := make([]byte, hw.MaxFrameBytes+1)
	require.ErrorIs(t, r.StartSendRaw(buf), hw.ErrFrameTooLarge)
}

func TestRadioRXOrderingPreserved(t *testing.T) {
	r := hw.NewRadio()
	r.InjectRX([]byte("A"), -80, 8)
	r.InjectRX([]byte("B"), -70, 9)

	pkts := r.Poll()
	require.Len(t, pkts, 2)
	require.Equal(t, []byte("A"), pkts[0].Bytes)
	require.Equal(t, []byte("B"), pkts[1].Bytes)
	require.Equal(t, float32(-80), pkts[0].RSSI)
	require.Equal(t, float32(8), pkts[0].SNR)
}

func TestRadioPendingFrameCarriesParams(t *testing.T) {
	r := hw.NewRadio()
	r.Configure(868.1, 125, 9, 5, 17)
	require.NoError(t, r.StartSendRaw([]byte{0xAA, 0xBB}))
	f, ok := r.PendingFrame()
	require.True(t, ok)
	require.Equal(t, []byte{0xAA, 0xBB}, f.Bytes)
	require.Equal(t, float32(868.1), f.Params.Freq)
}
