package simtest_test

import (
	"testing"

	simcore "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/firmware"
	"github.com/signalsfoundry/mcsim/simtest"
)

func newCommandNode(*simcore.Context) simcore.Firmware {
	return &firmware.CommandNode{}
}

// Scenario 6: two identically configured nodes driven through an identical
// input script must produce byte-identical StepResult streams.
func TestCompareRunsDeterministicReplay(t *testing.T) {
	cfg := simcore.Config{
		RNGSeed:              99,
		LoraFreq:             915,
		LoraBw:               125,
		LoraSF:               7,
		LoraCR:               5,
		LoraTxPower:          14,
		IdleLoopsBeforeYield: 2,
	}
	cfg.SetNodeName("replay")

	script := []simtest.StepInput{
		{Millis: 100, RTCSecs: 1700000000},
		{Millis: 200, RTCSecs: 1700000000, SerialRX: []byte("advert\r")},
		{Millis: 300, RTCSecs: 1700000000, RadioRX: []simtest.RadioRXInput{{Bytes: []byte{1, 2, 3}, RSSI: -70, SNR: 6}}},
		{Millis: 400, RTCSecs: 1700000000, SerialRX: []byte("send 0102\r")},
		{Millis: 500, RTCSecs: 1700000000, NotifyTXComplete: true},
	}

	simtest.CompareRuns(t, "test", cfg, newCommandNode, script)
}
