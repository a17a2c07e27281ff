package corert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nginxcore/corert/threadpool"
	"github.com/nginxcore/corert/timer"
)

func TestNewWiresComponents(t *testing.T) {
	now := uint32(1000)
	r := New(Config{ArenaName: "test", Role: threadpool.RoleSingle, Now: func() uint32 { return now }}, nil)

	require.NotNil(t, r.Arena)
	require.NotNil(t, r.Timers)
	require.NotNil(t, r.Pools)
	require.NotNil(t, r.Log)
}

func TestTickExpiresDueTimers(t *testing.T) {
	now := uint32(1000)
	r := New(Config{ArenaName: "test", Role: threadpool.RoleSingle, Now: func() uint32 { return now }}, nil)

	fired := false
	e := &timer.Event{Handler: func(*timer.Event) { fired = true }}
	r.Timers.Add(e, 500)

	r.Tick(now)
	require.True(t, fired)
}
