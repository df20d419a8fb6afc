package tag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildParse_RoundTrip(t *testing.T) {
	cases := []struct {
		identity string
		ts       uint64
	}{
		{"A", 1},
		{"host-01", 1_700_000_000_123_456},
		{"", 42},
		{strings.Repeat("x", MaxIdentityLen), 0xdeadbeef},
	}

	for _, c := range cases {
		tg := Build(c.identity, c.ts)
		gotID, gotTS, err := Parse(tg)
		require.NoError(t, err)
		require.Equal(t, c.identity, gotID)
		require.Equal(t, c.ts, gotTS)
	}
}

func TestBuild_TruncatesOverlongIdentity(t *testing.T) {
	tg := Build(strings.Repeat("y", IdentityLen+5), 7)
	id, _, err := Parse(tg)
	require.NoError(t, err)
	require.Len(t, id, MaxIdentityLen)
}

func TestIsFree(t *testing.T) {
	require.True(t, IsFree(Sentinel))
	require.False(t, IsFree(Build("A", 0)))
	require.False(t, IsFree(Build("", 1)))
}

func TestSameIdentity(t *testing.T) {
	tg := Build("host-a", 123)
	require.True(t, SameIdentity(tg, "host-a"))
	require.False(t, SameIdentity(tg, "host-b"))
	// A trailing space is indistinguishable from padding in the encoding.
	require.True(t, SameIdentity(tg, "host-a "))
}

func TestIsSentinelIdentity(t *testing.T) {
	require.True(t, IsSentinelIdentity("------FREE------"))
	require.False(t, IsSentinelIdentity("A"))
}

func TestSame(t *testing.T) {
	a := Build("A", 1)
	b := Build("A", 1)
	c := Build("A", 2)
	require.True(t, Same(a, b))
	require.False(t, Same(a, c))
}
