package firmware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	simcore "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/firmware"
)

func newNode(t *testing.T) *simcore.Node {
	t.Helper()
	cfg := &simcore.Config{RNGSeed: 1, IdleLoopsBeforeYield: 2}
	cfg.SetNodeName("cmd-test")
	n := simcore.Create("test", cfg, func(*simcore.Context) simcore.Firmware {
		return &firmware.CommandNode{}
	})
	t.Cleanup(n.Destroy)
	return n
}

func TestSetupLogsBootBanner(t *testing.T) {
	n := newNode(t)
	result, err := n.Step(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Contains(t, string(result.LogBytes), "[boot] node ready")
}

func TestUnrecognizedCommandIsLogged(t *testing.T) {
	n := newNode(t)
	n.InjectSerialRX([]byte("frobnicate\r"))
	result, err := n.Step(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Contains(t, string(result.LogBytes), "unrecognized")
}

func TestAdvertCommandWritesCayenneLPPFrameToTX(t *testing.T) {
	n := newNode(t)
	n.InjectSerialRX([]byte("advert\r"))
	result, err := n.Step(context.Background(), 100, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.SerialTX)
	require.Contains(t, string(result.LogBytes), "[advert]")
}

func TestBadHexSendIsRejected(t *testing.T) {
	n := newNode(t)
	n.InjectSerialRX([]byte("send zz\r"))
	result, err := n.Step(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Contains(t, string(result.LogBytes), "bad hex payload")
	require.False(t, n.Radio().HasPendingTx())
}

func TestPoweroffCommandYieldsPowerOff(t *testing.T) {
	n := newNode(t)
	n.InjectSerialRX([]byte("poweroff\r"))
	result, err := n.Step(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Equal(t, simcore.YieldPowerOff, result.Reason)
}
