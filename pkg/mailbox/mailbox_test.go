package mailbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMailbox(t *testing.T) {
	m := New[int]()
	_, ok := m.TryTake()
	require.False(t, ok)

	m.Publish(1)
	m.Publish(2)
	v, ok := m.TryTake()
	require.True(t, ok)
	require.Equal(t, 2, v)
	_, ok = m.TryTake()
	require.False(t, ok)
}

func TestFanout(t *testing.T) {
	a, b := New[string](), New[string]()
	Fanout[string]{a, b}.Publish("x")
	for _, m := range []*Mailbox[string]{a, b} {
		v, ok := m.TryTake()
		require.True(t, ok)
		require.Equal(t, "x", v)
	}
}

func TestLatest(t *testing.T) {
	m := New[uint16]()
	l := NewLatest(m)
	v, ok := l.Get()
	require.False(t, ok)
	require.Zero(t, v)

	m.Publish(300)
	v, ok = l.Get()
	require.True(t, ok)
	require.Equal(t, uint16(300), v)

	v, ok = l.Get()
	require.True(t, ok)
	require.Equal(t, uint16(300), v, "stale value is reused")

	m.Publish(301)
	v, _ = l.Get()
	require.Equal(t, uint16(301), v)
}
