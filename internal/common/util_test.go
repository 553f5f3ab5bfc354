package common

import (
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	assert.Len(t, s, n*2)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestRandomNumericCode_StaysInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		s, err := RandomNumericCode(1000000, 9999999)
		require.NoError(t, err)
		require.Len(t, s, 7)

		n, err := strconv.ParseInt(s, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1000000))
		assert.LessOrEqual(t, n, int64(9999999))
	}
}

func TestRandomNumericCode_SingleValueRange(t *testing.T) {
	s, err := RandomNumericCode(42, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", s)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("9659829")
	WipeByteArray(b)
	assert.Equal(t, make([]byte, 7), b)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
