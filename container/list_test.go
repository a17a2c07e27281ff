package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nginxcore/corert/arena"
)

func TestListPushWithinOnePart(t *testing.T) {
	a := arena.New("test", 4096, nil)
	l, err := NewList[int](a, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		p, err := l.Push()
		require.NoError(t, err)
		*p = i
	}

	part := l.Parts()
	require.Equal(t, []int{0, 1, 2, 3}, part.Elements())
	require.Nil(t, part.Next())
}

func TestListPushAcrossParts(t *testing.T) {
	a := arena.New("test", 4096, nil)
	l, err := NewList[int](a, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		p, err := l.Push()
		require.NoError(t, err)
		*p = i
	}

	var got []int
	for part := l.Parts(); part != nil; part = part.Next() {
		got = append(got, part.Elements()...)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestListElementAddressesAreStable(t *testing.T) {
	a := arena.New("test", 4096, nil)
	l, err := NewList[int](a, 2)
	require.NoError(t, err)

	var ptrs []*int
	for i := 0; i < 10; i++ {
		p, err := l.Push()
		require.NoError(t, err)
		*p = i
		ptrs = append(ptrs, p)
	}
	for i, p := range ptrs {
		require.Equal(t, i, *p)
	}
}
