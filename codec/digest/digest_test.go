package digest_test

import (
	"encoding/hex"
	"testing"

	"github.com/signalsfoundry/mcsim/codec/digest"
	"github.com/stretchr/testify/require"
)

func TestSum256EmptyString(t *testing.T) {
	sum := digest.Sum256(nil)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(sum[:]))
}

func TestHMACSum256RFC4231Case1(t *testing.T) {
	key, _ := hex.DecodeString("0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	mac := digest.HMACSum256(key, []byte("Hi There"))
	require.Equal(t, "b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7", hex.EncodeToString(mac[:]))
}
