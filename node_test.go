package simcore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	simcore "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/firmware"
)

func newTestConfig(seed uint32) *simcore.Config {
	cfg := &simcore.Config{
		RNGSeed:              seed,
		LoraFreq:             915,
		LoraBw:               125,
		LoraSF:               7,
		LoraCR:               5,
		LoraTxPower:          14,
		IdleLoopsBeforeYield: 2,
	}
	cfg.SetNodeName("test-node")
	return cfg
}

func newTestNode(t *testing.T, seed uint32) *simcore.Node {
	t.Helper()
	n := simcore.Create("test", newTestConfig(seed), func(*simcore.Context) simcore.Firmware {
		return &firmware.CommandNode{}
	})
	t.Cleanup(n.Destroy)
	return n
}

// Scenario 1: ten steps with no inputs settle on IDLE with a wake hint.
func TestTenIdleStepsYieldIdleWithWakeHint(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		result, err := n.Step(ctx, uint64(i*100), 1700000000)
		require.NoError(t, err)
		require.Equal(t, simcore.YieldIdle, result.Reason)
		require.GreaterOrEqual(t, result.WakeMillis, uint64(i*100))
	}
}

// Scenario 2: sending "reboot\r" over serial RX causes the next step to
// yield with reason REBOOT once the firmware's command interpreter reads it.
func TestSerialRebootCommandYieldsReboot(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()

	n.InjectSerialRX([]byte("reboot\r"))
	result, err := n.Step(ctx, 100, 1700000000)
	require.NoError(t, err)
	require.Equal(t, simcore.YieldReboot, result.Reason)
}

// Scenario 3: two libraries loaded into one host (mirrored here as two
// firmware flavors created in one process) never alias each other's
// filesystem or hardware state.
func TestTwoNodeTypesDoNotShareState(t *testing.T) {
	ctx := context.Background()
	companion := simcore.Create("companion", newTestConfig(1), func(*simcore.Context) simcore.Firmware {
		return &firmware.CommandNode{}
	})
	defer companion.Destroy()
	repeater := simcore.Create("repeater", newTestConfig(2), func(*simcore.Context) simcore.Firmware {
		return &firmware.CommandNode{}
	})
	defer repeater.Destroy()

	require.Equal(t, 1, companion.FSWrite("/a", []byte("x")))
	require.False(t, repeater.FSExists("/a"))

	_, err := companion.Step(ctx, 100, 0)
	require.NoError(t, err)
	_, err = repeater.Step(ctx, 100, 0)
	require.NoError(t, err)
}

// Scenario 4: an injected radio RX packet is delivered to firmware's next
// poll with its PHY quality metrics intact, logged to serial.
func TestInjectedRadioRXIsDeliveredWithPHYMetrics(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()

	n.InjectRadioRX([]byte{0xAA, 0xBB}, -80, 8)
	result, err := n.Step(ctx, 100, 0)
	require.NoError(t, err)
	require.Contains(t, string(result.LogBytes), "2 bytes rssi=-80.0 snr=8.0")
}

// Scenario 5: firmware starting a radio TX yields TX_STARTED with the frame
// attached, and the radio stays busy until NotifyTXComplete.
func TestRadioSendYieldsTXStartedAndStaysBusy(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()

	n.InjectSerialRX([]byte("send aabb\r"))
	result, err := n.Step(ctx, 100, 0)
	require.NoError(t, err)
	require.Equal(t, simcore.YieldTXStarted, result.Reason)
	require.NotNil(t, result.TXFrame)
	require.Equal(t, []byte{0xaa, 0xbb}, result.TXFrame.Bytes)
	require.True(t, n.Radio().HasPendingTx())

	// A second send before completion fails; radio stays busy.
	n.InjectSerialRX([]byte("send ccdd\r"))
	result2, err := n.Step(ctx, 200, 0)
	require.NoError(t, err)
	require.True(t, n.Radio().HasPendingTx())
	require.Contains(t, string(result2.LogBytes), "send failed")

	n.NotifyTXComplete()
	require.False(t, n.Radio().HasPendingTx())
}

// A frame left unacknowledged from a previous step must not make a later,
// otherwise unproductive step report TX_STARTED again -- only the
// not-pending -> pending edge counts as productive per the idle-detection
// contract, not "still pending".
func TestUnacknowledgedTXDoesNotReYieldTXStarted(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()

	n.InjectSerialRX([]byte("send aabb\r"))
	result, err := n.Step(ctx, 100, 0)
	require.NoError(t, err)
	require.Equal(t, simcore.YieldTXStarted, result.Reason)

	result2, err := n.Step(ctx, 200, 0)
	require.NoError(t, err)
	require.Equal(t, simcore.YieldIdle, result2.Reason)
	require.True(t, n.Radio().HasPendingTx())

	n.NotifyTXComplete()
}

// Millis is non-decreasing as observed by firmware across steps with
// non-decreasing coordinator ticks.
func TestMillisNonDecreasingAcrossSteps(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()
	var last uint64
	for i := 0; i < 5; i++ {
		millis := uint64(i * 250)
		_, err := n.Step(ctx, millis, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n.Millis().Millis(), last)
		last = n.Millis().Millis()
	}
}

func TestStepBeginWithoutWaitReturnsErrStepInProgress(t *testing.T) {
	n := newTestNode(t, 1)
	require.NoError(t, n.StepBegin(100, 0))
	require.ErrorIs(t, n.StepBegin(200, 0), simcore.ErrStepInProgress)
	_, err := n.StepWait(context.Background())
	require.NoError(t, err)
}

func TestStepWaitWithoutBeginReturnsErrNoStepInProgress(t *testing.T) {
	n := newTestNode(t, 1)
	_, err := n.StepWait(context.Background())
	require.ErrorIs(t, err, simcore.ErrNoStepInProgress)
}

func TestDestroyBlocksFurtherSteps(t *testing.T) {
	n := simcore.Create("test", newTestConfig(1), func(*simcore.Context) simcore.Firmware {
		return &firmware.CommandNode{}
	})
	n.Destroy()
	_, err := n.Step(context.Background(), 100, 0)
	require.ErrorIs(t, err, simcore.ErrShuttingDown)
}

func TestRebootPreservesFilesystemAndResetsRadio(t *testing.T) {
	n := newTestNode(t, 1)
	ctx := context.Background()

	require.Equal(t, 5, n.FSWrite("/keep", []byte("hello")))
	_, err := n.Step(ctx, 100, 0)
	require.NoError(t, err)

	err = n.Reboot(newTestConfig(1))
	require.NoError(t, err)

	data, ok := n.FSRead("/keep")
	require.True(t, ok)
	require.Equal(t, []byte("hello"), data)
	require.False(t, n.Radio().HasPendingTx())

	result, err := n.Step(ctx, 200, 0)
	require.NoError(t, err)
	require.Contains(t, string(result.LogBytes), "boot")
}
