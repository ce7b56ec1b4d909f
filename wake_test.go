package simcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWakeRegistryNextWakeIsMinimumUnexpired(t *testing.T) {
	w := NewWakeRegistry()
	w.Add(500, 1)
	w.Add(200, 2)
	w.Add(800, 3)

	next, ok := w.NextWake(0)
	require.True(t, ok)
	require.Equal(t, uint64(200), next)
}

func TestWakeRegistryPurgeExpiredDropsPastDeadlines(t *testing.T) {
	w := NewWakeRegistry()
	w.Add(100, 1)
	w.Add(200, 2)
	w.Add(300, 3)

	w.PurgeExpired(200)
	require.Equal(t, 1, w.Len())

	next, ok := w.NextWake(200)
	require.True(t, ok)
	require.Equal(t, uint64(300), next)
}

func TestWakeRegistryEmptyReportsNoWake(t *testing.T) {
	w := NewWakeRegistry()
	_, ok := w.NextWake(0)
	require.False(t, ok)
}

func TestWakeRegistryDuplicateDeadlinesAllowed(t *testing.T) {
	w := NewWakeRegistry()
	w.Add(100, 1)
	w.Add(100, 2)
	require.Equal(t, 2, w.Len())
	w.PurgeExpired(100)
	require.Equal(t, 0, w.Len())
}
