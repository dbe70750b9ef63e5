package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arenacore/shared"
)

func newTestPlayer(id PlayerID, x, y float32) *Player {
	return &Player{ID: id, X: x, Y: y, Health: shared.MaxHealth}
}

func TestStepIdlePlayerStaysPut(t *testing.T) {
	sim := NewSimulation(nil)
	p := newTestPlayer("p1", 0, 0)
	sim.AddPlayer(p)

	sim.Step(nil)

	require.Equal(t, float32(0), p.X)
	require.Equal(t, float32(0), p.Y)
}

func TestStepSingleInputMovesFullUndampedDisplacement(t *testing.T) {
	sim := NewSimulation(nil)
	p := newTestPlayer("p1", 0, 0)
	sim.AddPlayer(p)

	inputs := map[PlayerID][]Input{
		"p1": {{Seq: 1, W: true}},
	}
	sim.Step(inputs)

	dt := float32(shared.TickPeriod.Seconds())
	require.InDelta(t, 0, p.X, 1e-4)
	require.InDelta(t, -shared.PlayerSpeed*dt, p.Y, 1e-3)
}

func TestStepIgnoresStaleOrDuplicateSeq(t *testing.T) {
	metrics := &RoomMetrics{}
	sim := NewSimulation(metrics)
	p := newTestPlayer("p1", 0, 0)
	sim.AddPlayer(p)

	sim.Step(map[PlayerID][]Input{"p1": {{Seq: 5, W: true}}})
	xAfterFirst, yAfterFirst := p.X, p.Y

	sim.Step(map[PlayerID][]Input{"p1": {{Seq: 5, S: true}, {Seq: 3, S: true}}})

	require.Equal(t, int64(2), metrics.OldSeqIgnored)
	require.Equal(t, xAfterFirst, p.X)
	// Velocity carried from tick 1 still integrates (with damping), so Y
	// keeps moving even though no new input was accepted.
	require.NotEqual(t, yAfterFirst, p.Y)
}

func TestStepDeadPlayerDoesNotMoveOrAdvanceSeq(t *testing.T) {
	sim := NewSimulation(nil)
	p := newTestPlayer("p1", 0, 0)
	p.Health = 0
	sim.AddPlayer(p)

	sim.Step(map[PlayerID][]Input{"p1": {{Seq: 1, D: true}}})

	require.Equal(t, float32(0), p.X)
	require.Equal(t, uint32(0), p.lastProcessedSeq)
}

func TestClampToArenaStopsAtWalls(t *testing.T) {
	hi := float32(shared.MapSize/2 - shared.PlayerR)
	p := &Player{X: hi + 500, Y: 0, VX: 100, Health: shared.MaxHealth}
	clampToArena(p)
	require.Equal(t, hi, p.X)
	require.Equal(t, float32(0), p.VX)
}

func TestResolvePlayerOverlapsSeparatesCoincidentPlayers(t *testing.T) {
	a := newTestPlayer("a", 0, 0)
	b := newTestPlayer("b", 0, 0)
	resolvePlayerOverlaps([]*Player{a, b})

	dx, dy := b.X-a.X, b.Y-a.Y
	dist := shared.Vec2{X: dx, Y: dy}.Length()
	require.GreaterOrEqual(t, dist, float32(2*shared.PlayerR-1e-3))
}

func TestSpawnBulletOffsetsFromOwner(t *testing.T) {
	sim := NewSimulation(nil)
	owner := newTestPlayer("shooter", 0, 0)
	sim.AddPlayer(owner)

	b := sim.SpawnBullet(owner, 0) // angle 0 => +X direction
	require.Greater(t, b.SpawnX, float32(0))
	require.InDelta(t, 0, b.SpawnY, 1e-3)
}

func TestBulletHitsPlayerAndDamages(t *testing.T) {
	sim := NewSimulation(nil)
	shooter := newTestPlayer("shooter", 0, 0)
	target := newTestPlayer("target", 300, 0)
	sim.AddPlayer(shooter)
	sim.AddPlayer(target)

	sim.SpawnBullet(shooter, 0) // fired straight at target along +X

	var kills []KillEvent
	for i := 0; i < 60 && target.Health == shared.MaxHealth; i++ {
		kills = append(kills, sim.Step(nil)...)
	}

	require.Less(t, target.Health, shared.MaxHealth)
	require.Empty(t, kills)
}

func TestBulletKillsAfterEnoughHits(t *testing.T) {
	sim := NewSimulation(nil)
	shooter := newTestPlayer("shooter", 0, 0)
	target := newTestPlayer("target", 300, 0)
	sim.AddPlayer(shooter)
	sim.AddPlayer(target)

	hitsNeeded := (shared.MaxHealth + shared.BulletDamage - 1) / shared.BulletDamage
	var lastKills []KillEvent
	for i := 0; i < hitsNeeded; i++ {
		sim.SpawnBullet(shooter, 0)
		for tick := 0; tick < 60; tick++ {
			kills := sim.Step(nil)
			if len(kills) > 0 {
				lastKills = kills
			}
			if target.Health <= 0 {
				break
			}
		}
	}

	require.Equal(t, 0, target.Health)
	require.Len(t, lastKills, 1)
	require.Equal(t, target.ID, lastKills[0].TargetID)
	require.Equal(t, shooter.ID, lastKills[0].KillerID)
}

func TestBulletRemovedAfterMaxDistance(t *testing.T) {
	sim := NewSimulation(nil)
	shooter := newTestPlayer("shooter", 0, 0)
	sim.AddPlayer(shooter)
	b := sim.SpawnBullet(shooter, 0)

	for i := 0; i < 600; i++ {
		sim.Step(nil)
		if _, ok := sim.Bullets()[b.ID]; !ok {
			return
		}
	}
	t.Fatal("bullet was never removed from state")
}

func TestBulletNeverDamagesItsOwner(t *testing.T) {
	sim := NewSimulation(nil)
	shooter := newTestPlayer("shooter", 0, 0)
	sim.AddPlayer(shooter)

	b := sim.SpawnBullet(shooter, 0)
	b.SpawnX, b.SpawnY = shooter.X, shooter.Y // trajectory starts squarely on top of its own owner

	for i := 0; i < 60; i++ {
		sim.Step(nil)
	}

	require.Equal(t, shared.MaxHealth, shooter.Health)
}

func TestRespawnResetsHealthAndClearsVelocity(t *testing.T) {
	sim := NewSimulation(nil)
	p := newTestPlayer("p1", 0, 0)
	p.Health = 0
	p.VX, p.VY = 50, 50
	sim.AddPlayer(p)

	sim.Respawn(p.ID)

	require.Equal(t, shared.MaxHealth, p.Health)
	require.Equal(t, float32(0), p.VX)
	require.Equal(t, float32(0), p.VY)
}
