// Package client holds the player-facing half of the sync engine: local
// prediction with server reconciliation, dead-reckoned remote
// interpolation, and client-side bullet extrapolation. It mirrors the
// authoritative math in arenacore/server closely enough that predicted
// motion matches what the room will compute, while importing nothing from
// that package — the wire is the only coupling, exactly as the spec's
// client/server boundary requires.
package client

import "arenacore/shared"

// PendingInput is one input the predictor has applied locally but not yet
// had acknowledged by the server, kept so it can be replayed after a
// reconciliation teleport.
type PendingInput struct {
	Seq   uint32
	W, A, S, D bool
	Angle float32
}

// PlayerState is the predictor's local mirror of one player body — the
// same fields the server's Player carries, since prediction only works if
// both sides integrate identical state.
type PlayerState struct {
	X, Y   float32
	VX, VY float32
	Angle  float32
	Health int
}

// Predictor runs the client's local copy of a single player — its own —
// forward every frame using the same integration the authoritative
// simulation uses, and reconciles it against each authoritative snapshot
// the server sends for that player.
//
// Grounded in the teacher's single-writer-per-entity discipline: Predictor
// is the only place client code is allowed to mutate Local, just as
// Simulation is the only writer of server state.
type Predictor struct {
	Local PlayerState

	nextSeq uint32
	history []PendingInput
}

func NewPredictor(spawnX, spawnY float32) *Predictor {
	return &Predictor{
		Local:   PlayerState{X: spawnX, Y: spawnY, Health: shared.MaxHealth},
		history: make([]PendingInput, 0, shared.InputHistoryLimit),
	}
}

// ApplyLocalInput assigns the next sequence number, integrates it into
// Local immediately (so input feels instant), and retains it for replay
// until the server acknowledges it. Returns the sequence number assigned,
// which the caller must send to the server alongside the raw keys.
func (p *Predictor) ApplyLocalInput(w, a, s, d bool, angle float32) uint32 {
	p.nextSeq++
	in := PendingInput{Seq: p.nextSeq, W: w, A: a, S: s, D: d, Angle: angle}
	p.integrate(in)
	p.history = append(p.history, in)
	if len(p.history) > shared.InputHistoryLimit {
		p.history = p.history[len(p.history)-shared.InputHistoryLimit:]
	}
	return in.Seq
}

// integrate advances Local by one tick period under in, using exactly the
// order the server's Simulation.Step uses: velocity from keys, angle from
// input, position integration, wall clamp, then damping applied after
// integration. Player-overlap resolution is skipped locally — the
// predictor has no view of other players, so it predicts free motion and
// lets reconciliation correct for any collision the server applied.
func (p *Predictor) integrate(in PendingInput) {
	if p.Local.Health <= 0 {
		return
	}
	dt := float32(shared.TickPeriod.Seconds())
	dir := shared.DirectionFromKeys(in.W, in.A, in.S, in.D)
	p.Local.VX = dir.X * shared.PlayerSpeed
	p.Local.VY = dir.Y * shared.PlayerSpeed
	p.Local.Angle = shared.WrapAngle(in.Angle)

	p.Local.X += p.Local.VX * dt
	p.Local.Y += p.Local.VY * dt
	p.clampToArena()

	dampFactor := float32(1 / (1 + shared.PlayerDamping*float64(dt)))
	p.Local.VX *= dampFactor
	p.Local.VY *= dampFactor
}

func (p *Predictor) clampToArena() {
	lo := float32(-shared.MapSize/2 + shared.PlayerR)
	hi := float32(shared.MapSize/2 - shared.PlayerR)
	if p.Local.X < lo {
		p.Local.X = lo
	} else if p.Local.X > hi {
		p.Local.X = hi
	}
	if p.Local.Y < lo {
		p.Local.Y = lo
	} else if p.Local.Y > hi {
		p.Local.Y = hi
	}
}

// Reconcile applies the server's acknowledgment of this player's own
// state: teleport Local to the authoritative snapshot, drop every pending
// input up to and including ackSeq, and replay what remains so locally
// visible motion stays smooth instead of snapping back every tick.
func (p *Predictor) Reconcile(authX, authY, authAngle float32, authHealth int, ackSeq uint32) {
	p.Local.X, p.Local.Y = authX, authY
	p.Local.Angle = authAngle
	p.Local.Health = authHealth
	p.Local.VX, p.Local.VY = 0, 0

	kept := p.history[:0]
	for _, in := range p.history {
		if in.Seq <= ackSeq {
			continue
		}
		kept = append(kept, in)
	}
	p.history = kept

	for _, in := range p.history {
		p.integrate(in)
	}
}

// PendingCount exposes how many unacknowledged inputs remain, useful for
// diagnostics/tests.
func (p *Predictor) PendingCount() int {
	return len(p.history)
}
