package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arenacore/shared"
)

func TestBuildDeltaFirstTickSendsOnlyFullSelf(t *testing.T) {
	metrics := &RoomMetrics{}
	sim := NewSimulation(metrics)
	im := NewInterestManager(metrics)
	rep := NewReplicator(metrics)

	self := newTestPlayer("self", 0, 0)
	sim.AddPlayer(self)
	im.Refresh(sim.Players())

	delta := rep.BuildDelta("self", 1, sim, im)
	require.Len(t, delta.Players, 1)
	require.Equal(t, shared.OpFull, delta.Players[0].Op)
	require.Equal(t, "self", delta.Players[0].SessionID)
}

func TestBuildDeltaSendsDeltaOnlyOnChange(t *testing.T) {
	metrics := &RoomMetrics{}
	sim := NewSimulation(metrics)
	im := NewInterestManager(metrics)
	rep := NewReplicator(metrics)

	self := newTestPlayer("self", 0, 0)
	sim.AddPlayer(self)
	im.Refresh(sim.Players())
	rep.BuildDelta("self", 1, sim, im) // establishes baseline

	// Nothing changed: no records.
	unchanged := rep.BuildDelta("self", 2, sim, im)
	require.Empty(t, unchanged.Players)

	self.X = 10
	changed := rep.BuildDelta("self", 3, sim, im)
	require.Len(t, changed.Players, 1)
	require.Equal(t, shared.OpDelta, changed.Players[0].Op)
	require.NotZero(t, changed.Players[0].Fields&uint8(shared.FieldX))
}

func TestBuildDeltaRemovesPeerThatLeavesView(t *testing.T) {
	metrics := &RoomMetrics{}
	sim := NewSimulation(metrics)
	im := NewInterestManager(metrics)
	rep := NewReplicator(metrics)

	self := newTestPlayer("self", 0, 0)
	peer := newTestPlayer("peer", 10, 10)
	sim.AddPlayer(self)
	sim.AddPlayer(peer)
	im.Refresh(sim.Players())
	rep.BuildDelta("self", 1, sim, im)

	sim.RemovePlayer(peer.ID)
	im.Refresh(sim.Players())
	delta := rep.BuildDelta("self", 2, sim, im)

	require.Len(t, delta.Players, 1)
	require.Equal(t, shared.OpRemove, delta.Players[0].Op)
	require.Equal(t, "peer", delta.Players[0].SessionID)
}

func TestBulletVisibilityIsGrantedOnceAndSticky(t *testing.T) {
	metrics := &RoomMetrics{}
	sim := NewSimulation(metrics)
	im := NewInterestManager(metrics)
	rep := NewReplicator(metrics)

	self := newTestPlayer("self", 0, 0)
	sim.AddPlayer(self)
	im.Refresh(sim.Players())

	b := sim.SpawnBullet(self, 0)
	rep.GrantBulletVisibility(b.ID, map[PlayerID]struct{}{"self": {}})

	first := rep.BuildDelta("self", 1, sim, im)
	require.Len(t, first.Bullets, 1)
	require.Equal(t, shared.OpFull, first.Bullets[0].Op)

	second := rep.BuildDelta("self", 2, sim, im)
	require.Empty(t, second.Bullets) // already seen, trajectory never changes
}
