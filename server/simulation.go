package server

import (
	"math"
	"math/rand"
	"time"

	"arenacore/shared"
)

func cos32(a float32) float32 { return float32(math.Cos(float64(a))) }
func sin32(a float32) float32 { return float32(math.Sin(float64(a))) }

// KillEvent is emitted exactly once per tick in which a player's health
// transitions from >0 to 0, per invariant 7.
type KillEvent struct {
	TargetID PlayerID
	KillerID PlayerID
}

// HitEvent is the optional per-hit notification described in the design
// notes as redundant with the next STATE_DELTA but useful for immediate UI
// feedback. Step does not produce HitEvent values; it returns only
// KillEvents.
type HitEvent struct {
	TargetID  PlayerID
	ShooterID PlayerID
	Damage    int
	Health    int
}

// Simulation is the single authoritative writer of game state: player and
// bullet bodies, stepped at a fixed 60Hz tick. It owns nothing about
// transport or sessions — Room drains each session's input queue and
// drives Simulation.Step and SpawnBullet while holding its lock, keeping
// every mutation of authoritative state serialized per spec §5.
type Simulation struct {
	players map[PlayerID]*Player
	bullets map[BulletID]*Bullet

	nextBulletID BulletID
	clock        float64 // seconds since the room started simulating
	metrics      *RoomMetrics
	rng          *rand.Rand

	// lastRemovedBullets is the set of bullet ids that fell out of
	// s.bullets entirely (display grace elapsed) on the most recent Step,
	// so Room can tell the replicator to forget their visibility grants.
	lastRemovedBullets []BulletID
}

// LastRemovedBullets returns the bullet ids that were fully deleted from
// GameState on the most recent Step call.
func (s *Simulation) LastRemovedBullets() []BulletID {
	return s.lastRemovedBullets
}

func NewSimulation(metrics *RoomMetrics) *Simulation {
	return &Simulation{
		players: make(map[PlayerID]*Player),
		bullets: make(map[BulletID]*Bullet),
		metrics: metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SpawnPoint picks a random in-bounds spawn per the data model's join
// lifecycle: |x|,|y| <= MapSize/2 - SpawnMargin.
func (s *Simulation) SpawnPoint() (float32, float32) {
	bound := float32(shared.MapSize/2 - shared.SpawnMargin)
	x := (s.rng.Float32()*2 - 1) * bound
	y := (s.rng.Float32()*2 - 1) * bound
	return x, y
}

// AddPlayer registers a player body with the simulation; the caller
// (Room.Join) has already assigned it a spawn point.
func (s *Simulation) AddPlayer(p *Player) {
	s.players[p.ID] = p
}

// RemovePlayer destroys a player body immediately — called on consented
// leave or reconnection-grace expiry, never on a bare transport drop.
func (s *Simulation) RemovePlayer(id PlayerID) {
	delete(s.players, id)
}

// Player returns the live player body for id, or nil.
func (s *Simulation) Player(id PlayerID) *Player {
	return s.players[id]
}

// Bullets exposes the live bullet set for the interest manager's spawn-time
// visibility bypass and the replicator's view filtering.
func (s *Simulation) Bullets() map[BulletID]*Bullet {
	return s.bullets
}

func (s *Simulation) Players() map[PlayerID]*Player {
	return s.players
}

// ClockSeconds returns the simulation's running clock, the time base of
// Bullet's live-position extrapolation. Shoot cooldown is tracked on the
// server's wall clock instead (see Session.ShootReady).
func (s *Simulation) ClockSeconds() float64 {
	return s.clock
}

// SpawnBullet creates a bullet body offset from the shooter along angle by
// PlayerR+BulletR+5, per §4.1's shoot admission rule. It performs no
// cooldown or liveness check — that admission gate lives in Room, which
// has the session's cooldown clock and calls this only once admitted.
func (s *Simulation) SpawnBullet(owner *Player, angle float32) *Bullet {
	offset := float32(shared.PlayerR + shared.BulletR + 5)
	x0 := owner.X + cos32(angle)*offset
	y0 := owner.Y + sin32(angle)*offset
	id := s.nextBulletID
	s.nextBulletID++
	b := &Bullet{
		ID:        id,
		OwnerID:   owner.ID,
		SpawnX:    x0,
		SpawnY:    y0,
		Angle:     angle,
		Speed:     shared.BulletSpeed,
		spawnedAt: s.clock,
	}
	s.bullets[id] = b
	if s.metrics != nil {
		s.metrics.IncBulletsSpawned()
	}
	return b
}

// Step advances the world by one fixed tick: apply each session's drained
// inputs in order, integrate player motion with wall/player collision,
// advance and resolve bullets. inputs maps session id to that session's
// inputs for this tick, already in the order the client sent them.
func (s *Simulation) Step(inputs map[PlayerID][]Input) []KillEvent {
	dt := float32(shared.TickPeriod.Seconds())

	for id, queued := range inputs {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		for _, in := range queued {
			if p.Health <= 0 {
				// Dead players' inputs are discarded; lastProcessedSeq is
				// deliberately NOT advanced, since reconciliation must
				// only acknowledge inputs actually simulated.
				continue
			}
			if in.Seq <= p.lastProcessedSeq {
				if s.metrics != nil {
					s.metrics.IncOldSeqIgnored()
				}
				continue
			}
			dir := shared.DirectionFromKeys(in.W, in.A, in.S, in.D)
			p.VX = dir.X * shared.PlayerSpeed
			p.VY = dir.Y * shared.PlayerSpeed
			p.Angle = shared.WrapAngle(in.Angle)
			p.lastProcessedSeq = in.Seq
			if s.metrics != nil {
				s.metrics.IncAccepted()
			}
		}
	}

	live := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Health > 0 {
			p.X += p.VX * dt
			p.Y += p.VY * dt
		}
		live = append(live, p)
	}
	resolvePlayerOverlaps(live)
	for _, p := range live {
		clampToArena(p)
	}
	// High linear damping: applied after this tick's integration so a
	// freshly-commanded velocity still produces the full, undamped
	// per-tick displacement the client predicts, while a velocity that
	// survives across ticks without fresh input decays toward zero.
	dampFactor := float32(1 / (1 + shared.PlayerDamping*float64(dt)))
	for _, p := range live {
		p.VX *= dampFactor
		p.VY *= dampFactor
	}

	s.clock += float64(dt)

	kills := s.resolveBullets()
	return kills
}

func (s *Simulation) resolveBullets() []KillEvent {
	var kills []KillEvent
	dt := float32(shared.TickPeriod.Seconds())

	s.lastRemovedBullets = s.lastRemovedBullets[:0]
	for id, b := range s.bullets {
		if b.removed {
			if s.clock >= b.removeAt {
				delete(s.bullets, id)
				s.lastRemovedBullets = append(s.lastRemovedBullets, id)
			}
			continue
		}

		prevX, prevY := b.LiveXY(s.clock - float64(dt))
		curX, curY := b.LiveXY(s.clock)
		seg0 := shared.Vec2{X: prevX, Y: prevY}
		seg1 := shared.Vec2{X: curX, Y: curY}

		dist := b.DistanceFromSpawn(s.clock)
		half := float32(shared.MapSize/2 + 100)
		outOfBounds := curX < -half || curX > half || curY < -half || curY > half

		hit := false
		if dist <= shared.BulletMaxDistance && !outOfBounds {
			for _, p := range s.players {
				if p.ID == b.OwnerID || p.Health <= 0 {
					continue
				}
				center := shared.Vec2{X: p.X, Y: p.Y}
				if segmentHitsCircle(seg0, seg1, center, shared.PlayerR+shared.BulletR) {
					before := p.Health
					p.Health -= shared.BulletDamage
					if p.Health < 0 {
						p.Health = 0
					}
					if s.metrics != nil {
						s.metrics.IncHits()
					}
					if before > 0 && p.Health == 0 {
						kills = append(kills, KillEvent{TargetID: p.ID, KillerID: b.OwnerID})
						if s.metrics != nil {
							s.metrics.IncKills()
						}
					}
					hit = true
					break
				}
			}
		}

		if hit || dist > shared.BulletMaxDistance || outOfBounds {
			s.markBulletRemoved(b)
		}
	}
	return kills
}

func (s *Simulation) markBulletRemoved(b *Bullet) {
	if b.removed {
		return
	}
	b.removed = true
	b.removeAt = s.clock + shared.BulletRemoveGrace.Seconds()
	if s.metrics != nil {
		s.metrics.IncBulletsRemoved()
	}
}

// Respawn resets a dead player to full health at a fresh spawn point. The
// core sync engine never calls this on its own — the spec's invariant that
// health only increases "by explicit respawn" implies an external trigger
// (room/game-loop policy) that this method exists to serve.
func (s *Simulation) Respawn(id PlayerID) {
	p, ok := s.players[id]
	if !ok {
		return
	}
	x, y := s.SpawnPoint()
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
	p.Health = shared.MaxHealth
}
