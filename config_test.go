package simcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigMarshalUnmarshalRoundTrip(t *testing.T) {
	cfg := Config{
		LoraFreq:               915,
		LoraBw:                 125,
		LoraSF:                 7,
		LoraCR:                 5,
		LoraTxPower:            14,
		InitialMillis:          1234567,
		InitialRTC:             1700000000,
		RNGSeed:                42,
		SpinDetectionThreshold: 1000,
		LogSpinDetection:       true,
		LogLoopIterations:      false,
		IdleLoopsBeforeYield:   3,
	}
	for i := range cfg.PrivateKey {
		cfg.PrivateKey[i] = byte(i)
	}
	for i := range cfg.PublicKey {
		cfg.PublicKey[i] = byte(255 - i)
	}
	cfg.SetNodeName("companion-01")

	buf, err := cfg.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, ConfigWireSize)

	var out Config
	require.NoError(t, out.UnmarshalBinary(buf))
	require.Equal(t, cfg, out)
	require.Equal(t, "companion-01", out.NodeNameString())
}

func TestConfigUnmarshalRejectsWrongSize(t *testing.T) {
	var cfg Config
	err := cfg.UnmarshalBinary(make([]byte, ConfigWireSize-1))
	require.Error(t, err)
}

func TestSetNodeNameTruncatesAndNULTerminates(t *testing.T) {
	var cfg Config
	long := make([]byte, NodeNameSize+10)
	for i := range long {
		long[i] = 'x'
	}
	cfg.SetNodeName(string(long))
	require.Len(t, cfg.NodeNameString(), NodeNameSize-1)
}
