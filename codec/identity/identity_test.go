package identity_test

import (
	"testing"

	"github.com/signalsfoundry/mcsim/codec/identity"
	"github.com/stretchr/testify/require"
)

func TestGenerateSignVerifyRoundTrip(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)

	sig := kp.Sign([]byte("advert"))
	require.True(t, identity.Verify(kp.Public, []byte("advert"), sig))
	require.False(t, identity.Verify(kp.Public, []byte("tampered"), sig))
}

func TestFromBytesRejectsWrongSize(t *testing.T) {
	_, err := identity.FromBytes(make([]byte, 10), make([]byte, identity.PublicKeySize))
	require.ErrorIs(t, err, identity.ErrKeySize)
}

func TestFromBytesRoundTrip(t *testing.T) {
	kp, err := identity.Generate()
	require.NoError(t, err)

	restored, err := identity.FromBytes(kp.Private, kp.Public)
	require.NoError(t, err)
	require.Equal(t, []byte(kp.Public), []byte(restored.Public))
}
