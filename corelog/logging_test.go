package corelog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug: "debug",
		LevelInfo:  "info",
		LevelWarn:  "warn",
		LevelError: "error",
		Level(99):  "unknown",
	}
	for level, want := range cases {
		require.Equal(t, want, level.String())
	}
}

func TestNoOpDiscardsEverything(t *testing.T) {
	l := NoOp()
	require.False(t, l.IsEnabled(LevelError))
	require.NotPanics(t, func() { l.Log(Entry{Level: LevelError, Message: "boom"}) })
}

func TestDefaultIsNoOpUntilSet(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	require.False(t, Default().IsEnabled(LevelDebug))

	var got []Entry
	SetLogger(NewMinLevelLogger(LevelInfo, func(e Entry) { got = append(got, e) }))

	require.False(t, Default().IsEnabled(LevelDebug))
	require.True(t, Default().IsEnabled(LevelInfo))

	Default().Log(Entry{Level: LevelDebug, Message: "skip"})
	Default().Log(Entry{Level: LevelInfo, Message: "keep"})
	require.Len(t, got, 1)
	require.Equal(t, "keep", got[0].Message)
}

func TestSetMinLevelAdjustsGate(t *testing.T) {
	var got []Entry
	l := NewMinLevelLogger(LevelWarn, func(e Entry) { got = append(got, e) })

	l.Log(Entry{Level: LevelInfo, Message: "a"})
	require.Empty(t, got)

	SetMinLevel(l, LevelInfo)
	l.Log(Entry{Level: LevelInfo, Message: "b"})
	require.Len(t, got, 1)
}

func TestSetMinLevelNoOpForOtherLoggerTypes(t *testing.T) {
	require.NotPanics(t, func() { SetMinLevel(NoOp(), LevelDebug) })
}
