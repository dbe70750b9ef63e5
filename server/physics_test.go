package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arenacore/shared"
)

func TestSegmentHitsCircleDetectsTunnelingBullet(t *testing.T) {
	// A fast bullet that moves from x=-50 to x=50 in one tick would skip
	// straight over a player centered at the origin if only endpoints were
	// tested; the swept segment test must still catch it.
	a := shared.Vec2{X: -50, Y: 0}
	b := shared.Vec2{X: 50, Y: 0}
	center := shared.Vec2{X: 0, Y: 0}
	require.True(t, segmentHitsCircle(a, b, center, shared.PlayerR+shared.BulletR))
}

func TestSegmentHitsCircleMisses(t *testing.T) {
	a := shared.Vec2{X: -50, Y: 100}
	b := shared.Vec2{X: 50, Y: 100}
	center := shared.Vec2{X: 0, Y: 0}
	require.False(t, segmentHitsCircle(a, b, center, shared.PlayerR+shared.BulletR))
}

func TestClosestPointOnSegmentClampsToEndpoints(t *testing.T) {
	a := shared.Vec2{X: 0, Y: 0}
	b := shared.Vec2{X: 10, Y: 0}
	p := shared.Vec2{X: -5, Y: 0}
	got := closestPointOnSegment(a, b, p)
	require.Equal(t, a, got)
}
