// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashBDeterministic(t *testing.T) {
	a := HashB([]byte("ponc"))
	b := HashB([]byte("ponc"))
	require.Equal(t, a, b)

	c := HashB([]byte("ponc2"))
	require.NotEqual(t, a, c)
}

func TestSumMatchesConcatenation(t *testing.T) {
	left := []byte("left-part")
	right := []byte("right-part")

	got := Sum(left, right)
	want := HashH(append(append([]byte{}, left...), right...))

	require.Equal(t, want, got)
}

func TestSetBytesRejectsWrongLength(t *testing.T) {
	var h Hash
	require.Error(t, h.SetBytes([]byte{1, 2, 3}))
	require.NoError(t, h.SetBytes(make([]byte, HashSize)))
}

func TestIsLessOrEqual(t *testing.T) {
	var low, high Hash
	low[31] = 0x01
	high[31] = 0x02

	require.True(t, low.IsLessOrEqual(high))
	require.True(t, low.IsLessOrEqual(low))
	require.False(t, high.IsLessOrEqual(low))
}

func TestIsZero(t *testing.T) {
	var h Hash
	require.True(t, h.IsZero())
	h[0] = 1
	require.False(t, h.IsZero())
}

func TestNewHashFromStrRoundTrip(t *testing.T) {
	orig := HashH([]byte("round-trip"))
	parsed, err := NewHashFromStr(orig.String())
	require.NoError(t, err)
	require.True(t, orig.IsEqual(parsed))
}
