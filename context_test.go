package simcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewContextAppliesConfig(t *testing.T) {
	cfg := &Config{
		RNGSeed:              7,
		InitialMillis:        500,
		InitialRTC:           1700000000,
		IdleLoopsBeforeYield: 4,
	}
	cfg.PublicKey[0] = 0xAB
	cfg.SetNodeName("n1")

	ctx := NewContext(cfg)
	require.Equal(t, StateIdle, ctx.State())
	require.Equal(t, uint64(500), ctx.CurrentMillis())
	require.Equal(t, uint32(1700000000), ctx.CurrentRTCSecs())
	require.Equal(t, uint32(4), ctx.spin.idleLoopsBeforeYield)
	require.Equal(t, byte(0xAB), ctx.PublicKey[0])
	require.Equal(t, uint64(500), ctx.Millis.Millis())
}

func TestNewContextDefaultsIdleLoopsBeforeYield(t *testing.T) {
	ctx := NewContext(&Config{})
	require.Equal(t, uint32(2), ctx.spin.idleLoopsBeforeYield)
}

func TestCasStateOnlySucceedsFromExpectedState(t *testing.T) {
	ctx := NewContext(&Config{})
	require.True(t, ctx.casState(StateIdle, StateRunning))
	require.False(t, ctx.casState(StateIdle, StateYielded))
	require.Equal(t, StateRunning, ctx.State())
}

func TestApplyRebootResetsSpinAndWakesButKeepsFS(t *testing.T) {
	ctx := NewContext(&Config{RNGSeed: 1})
	ctx.FS.WriteFile("/keep", []byte("data"))
	ctx.Wakes.Add(1000, 1)

	ctx.applyReboot(&Config{RNGSeed: 2, IdleLoopsBeforeYield: 5})

	require.Equal(t, uint32(5), ctx.spin.idleLoopsBeforeYield)
	require.Equal(t, 0, ctx.Wakes.Len())
	data, ok := ctx.FS.ReadFile("/keep")
	require.True(t, ok)
	require.Equal(t, []byte("data"), data)
}

func TestAdvanceTimeUpdatesClocksAndAtomics(t *testing.T) {
	ctx := NewContext(&Config{})
	ctx.advanceTime(9000, 42)
	require.Equal(t, uint64(9000), ctx.CurrentMillis())
	require.Equal(t, uint32(42), ctx.CurrentRTCSecs())
	require.Equal(t, uint64(9000), ctx.Millis.Millis())
	require.Equal(t, uint32(42), ctx.RTC.CurrentTime())
}

func TestStageAndTakeResultRoundTrips(t *testing.T) {
	ctx := NewContext(&Config{})
	want := StepResult{Reason: YieldTXStarted, WakeMillis: 123}
	ctx.stageResult(want)
	require.Equal(t, want, ctx.takeResult())
}

func TestAttachLoggerIsNilSafe(t *testing.T) {
	ctx := NewContext(&Config{})
	ctx.attachLogger(nil) // must not panic, keeps the no-op default
	require.NotNil(t, ctx.log)
}
