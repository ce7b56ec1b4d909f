package cabi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	simcore "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/internal/cabi"
)

func testConfigBytes(t *testing.T) []byte {
	t.Helper()
	cfg := simcore.Config{RNGSeed: 1, IdleLoopsBeforeYield: 2}
	cfg.SetNodeName("cabi-test")
	buf, err := cfg.MarshalBinary()
	require.NoError(t, err)
	return buf
}

func TestNewNodeLookupDelete(t *testing.T) {
	handle, err := cabi.NewNode("companion", testConfigBytes(t))
	require.NoError(t, err)
	require.NotZero(t, handle)

	n, err := cabi.Lookup(handle)
	require.NoError(t, err)
	require.Equal(t, "companion", n.NodeType())

	cabi.Delete(handle)
	_, err = cabi.Lookup(handle)
	require.ErrorIs(t, err, cabi.ErrInvalidHandle)
}

func TestDeleteUnknownHandleIsNoop(t *testing.T) {
	require.NotPanics(t, func() { cabi.Delete(0xdeadbeef) })
}

func TestNewNodeRejectsBadConfigBytes(t *testing.T) {
	_, err := cabi.NewNode("companion", []byte{1, 2, 3})
	require.Error(t, err)
}

func TestLookupUnknownHandleReturnsErrInvalidHandle(t *testing.T) {
	_, err := cabi.Lookup(0x12345)
	require.ErrorIs(t, err, cabi.ErrInvalidHandle)
}
