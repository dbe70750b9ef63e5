package server

import "arenacore/shared"

// sentPlayer is the last set of player field values actually transmitted
// to one session, used to compute the next tick's delta.
type sentPlayer struct {
	X, Y, Angle float32
	Health      int
	LastSeq     uint32
}

// sessionView is one session's replication bookkeeping: which entities it
// currently has (so the replicator knows when to emit ADD vs. DELTA vs.
// REMOVE) and, for players, what was last sent.
type sessionView struct {
	playerSeen map[PlayerID]sentPlayer
	bulletSeen map[BulletID]struct{}
}

func newSessionView() *sessionView {
	return &sessionView{
		playerSeen: make(map[PlayerID]sentPlayer),
		bulletSeen: make(map[BulletID]struct{}),
	}
}

// Replicator is the per-client filtered view over GameState described in
// §4.4. It owns no entities itself — it reads the Simulation's
// authoritative state and the InterestManager's visibility sets once per
// tick and turns the difference from what it last sent into a compact
// delta.
type Replicator struct {
	views map[PlayerID]*sessionView

	// bulletGrants is the sticky per-bullet visibility set captured at
	// spawn time by the interest manager's linear-scan bypass; it does
	// not change for the bullet's lifetime, unlike player visibility
	// which is recomputed every refresh.
	bulletGrants map[BulletID]map[PlayerID]struct{}

	metrics *RoomMetrics
}

func NewReplicator(metrics *RoomMetrics) *Replicator {
	return &Replicator{
		views:        make(map[PlayerID]*sessionView),
		bulletGrants: make(map[BulletID]map[PlayerID]struct{}),
		metrics:      metrics,
	}
}

// GrantBulletVisibility records which sessions should see a newly spawned
// bullet for the rest of its lifetime, bypassing the 1Hz refresh.
func (r *Replicator) GrantBulletVisibility(id BulletID, sessions map[PlayerID]struct{}) {
	r.bulletGrants[id] = sessions
}

// ForgetBullet drops all replication bookkeeping for a bullet once the
// simulation has fully removed it from GameState (after the display
// grace). Sessions that had it in view still get a REMOVE record from
// BuildDelta on the tick the bullet disappeared from Simulation.Bullets,
// since that is driven by each view's own bulletSeen set.
func (r *Replicator) ForgetBullet(id BulletID) {
	delete(r.bulletGrants, id)
}

// RemoveSession drops every trace of a departed session from the
// replicator: its own view bookkeeping, and its membership in any other
// bullet's grant set.
func (r *Replicator) RemoveSession(id PlayerID) {
	delete(r.views, id)
	for _, granted := range r.bulletGrants {
		delete(granted, id)
	}
}

func (r *Replicator) viewFor(id PlayerID) *sessionView {
	v, ok := r.views[id]
	if !ok {
		v = newSessionView()
		r.views[id] = v
	}
	return v
}

func fullPlayerRecord(id PlayerID, p *Player) shared.PlayerRecord {
	return shared.PlayerRecord{
		SessionID: string(id),
		Op:        shared.OpFull,
		X:         p.X,
		Y:         p.Y,
		Angle:     p.Angle,
		Health:    int32(p.Health),
		LastSeq:   p.lastProcessedSeq,
	}
}

// BuildDelta computes the STATE_DELTA for one session: the client's own
// player is always included, per §4.4; an entity's first appearance in the
// view is always a full transmission; entities that left the view or were
// destroyed get a REMOVE record.
func (r *Replicator) BuildDelta(sessionID PlayerID, tick uint64, sim *Simulation, im *InterestManager) shared.StateDelta {
	view := r.viewFor(sessionID)
	players := sim.Players()

	desired := map[PlayerID]struct{}{sessionID: {}}
	for peer := range im.VisiblePeers(sessionID) {
		desired[peer] = struct{}{}
	}

	var playerRecords []shared.PlayerRecord
	for id := range view.playerSeen {
		_, wanted := desired[id]
		_, exists := players[id]
		if !wanted || !exists {
			playerRecords = append(playerRecords, shared.PlayerRecord{SessionID: string(id), Op: shared.OpRemove})
			delete(view.playerSeen, id)
			if r.metrics != nil {
				r.metrics.IncViewRemoves(1)
			}
		}
	}
	for id := range desired {
		p, ok := players[id]
		if !ok {
			continue
		}
		prev, seen := view.playerSeen[id]
		if !seen {
			playerRecords = append(playerRecords, fullPlayerRecord(id, p))
			view.playerSeen[id] = sentPlayer{X: p.X, Y: p.Y, Angle: p.Angle, Health: p.Health, LastSeq: p.lastProcessedSeq}
			if r.metrics != nil {
				r.metrics.IncViewAdds(1)
			}
			continue
		}
		var fields uint8
		if prev.X != p.X {
			fields |= uint8(shared.FieldX)
		}
		if prev.Y != p.Y {
			fields |= uint8(shared.FieldY)
		}
		if prev.Angle != p.Angle {
			fields |= uint8(shared.FieldAngle)
		}
		if prev.Health != p.Health {
			fields |= uint8(shared.FieldHealth)
		}
		if id == sessionID && prev.LastSeq != p.lastProcessedSeq {
			fields |= uint8(shared.FieldSeq)
		}
		if fields == 0 {
			continue
		}
		playerRecords = append(playerRecords, shared.PlayerRecord{
			SessionID: string(id),
			Op:        shared.OpDelta,
			Fields:    fields,
			X:         p.X,
			Y:         p.Y,
			Angle:     p.Angle,
			Health:    int32(p.Health),
			LastSeq:   p.lastProcessedSeq,
		})
		view.playerSeen[id] = sentPlayer{X: p.X, Y: p.Y, Angle: p.Angle, Health: p.Health, LastSeq: p.lastProcessedSeq}
	}

	bullets := sim.Bullets()
	var bulletRecords []shared.BulletRecord
	for id := range view.bulletSeen {
		if _, exists := bullets[id]; !exists {
			bulletRecords = append(bulletRecords, shared.BulletRecord{BulletID: uint32(id), Op: shared.OpRemove})
			delete(view.bulletSeen, id)
			if r.metrics != nil {
				r.metrics.IncViewRemoves(1)
			}
		}
	}
	for id, granted := range r.bulletGrants {
		if _, ok := granted[sessionID]; !ok {
			continue
		}
		if _, already := view.bulletSeen[id]; already {
			continue
		}
		b, exists := bullets[id]
		if !exists {
			continue
		}
		bulletRecords = append(bulletRecords, shared.BulletRecord{
			BulletID: uint32(id),
			Op:       shared.OpFull,
			OwnerID:  string(b.OwnerID),
			X0:       b.SpawnX,
			Y0:       b.SpawnY,
			Angle:    b.Angle,
			Speed:    b.Speed,
		})
		view.bulletSeen[id] = struct{}{}
		if r.metrics != nil {
			r.metrics.IncViewAdds(1)
		}
	}

	return shared.StateDelta{Tick: tick, Players: playerRecords, Bullets: bulletRecords}
}
