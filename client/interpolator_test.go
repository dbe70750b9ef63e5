package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arenacore/shared"
)

func TestRemoteEntityInterpolatesBetweenSamples(t *testing.T) {
	re := NewRemoteEntity()
	re.Push(RemoteSnapshot{ReceivedAt: 0.0, X: 0, Y: 0, Angle: 0, Health: 500})
	re.Push(RemoteSnapshot{ReceivedAt: 1.0, X: 10, Y: 0, Angle: 0, Health: 500})

	delay := shared.InterpolationDelay.Seconds()
	got, ok := re.Render(0.5 + delay)
	require.True(t, ok)
	require.InDelta(t, 5, got.X, 0.01)
}

func TestRemoteEntityClampsToNewestBeforeSecondSample(t *testing.T) {
	re := NewRemoteEntity()
	re.Push(RemoteSnapshot{ReceivedAt: 0.0, X: 0, Y: 0})

	delay := shared.InterpolationDelay.Seconds()
	got, ok := re.Render(0.0 + delay)
	require.True(t, ok)
	require.Equal(t, float32(0), got.X)
}

func TestRemoteEntityEmptyBufferReportsNotOK(t *testing.T) {
	re := NewRemoteEntity()
	_, ok := re.Render(5)
	require.False(t, ok)
}

func TestRemoteEntityEvictsStaleSamples(t *testing.T) {
	re := NewRemoteEntity()
	re.Push(RemoteSnapshot{ReceivedAt: 0.0, X: 0, Y: 0})
	re.Push(RemoteSnapshot{ReceivedAt: 10.0, X: 100, Y: 0}) // far beyond max age

	require.Len(t, re.buf, 1)
	require.Equal(t, float32(100), re.buf[0].X)
}
