package client

import (
	"strconv"

	"arenacore/shared"
)

// knownPlayer is a session's last-known absolute field values, merged
// from whatever subset of fields the most recent record carried. A
// shared.StateDelta's OpDelta records only carry the fields the bitmask
// in Fields marks as changed (§4.4) — the World must remember the rest
// itself, or every OpDelta record that omits e.g. X/Y because only
// Health changed would otherwise snap that entity back to zero.
type knownPlayer struct {
	X, Y, Angle float32
	Health      int
	LastSeq     uint32
}

// World is the client-side aggregate that turns a stream of decoded
// shared.StateDelta records into what the renderer needs: the local
// player's reconciled Predictor, one RemoteEntity per visible peer, and
// one RemoteBullet per visible bullet. It owns no transport — callers feed
// it already-decoded deltas, mirroring how Room on the server side owns
// no transport either.
type World struct {
	SelfID string
	Self   *Predictor

	known   map[string]knownPlayer
	peers   map[string]*RemoteEntity
	bullets map[string]*RemoteBullet
}

func NewWorld(selfID string, spawnX, spawnY float32) *World {
	return &World{
		SelfID: selfID,
		Self:   NewPredictor(spawnX, spawnY),
		known: map[string]knownPlayer{
			selfID: {X: spawnX, Y: spawnY, Health: shared.MaxHealth},
		},
		peers:   make(map[string]*RemoteEntity),
		bullets: make(map[string]*RemoteBullet),
	}
}

// ApplyStateDelta folds every record in a decoded shared.StateDelta into
// the world. nowSec is the client's local clock time the delta was
// received at, used as the interpolator's receive timestamp.
func (w *World) ApplyStateDelta(d shared.StateDelta, nowSec float64) {
	for _, rec := range d.Players {
		w.ApplyPlayerRecord(rec, nowSec)
	}
	for _, rec := range d.Bullets {
		w.ApplyBulletRecord(rec, nowSec)
	}
}

// ApplyPlayerRecord merges one player record against the session's
// last-known values (OpFull replaces them outright, OpDelta only
// overwrites the fields named in Fields, OpRemove drops the session
// entirely), then feeds the merged absolute state to either the local
// Predictor's reconciliation (for SelfID) or the peer's RemoteEntity
// buffer.
func (w *World) ApplyPlayerRecord(rec shared.PlayerRecord, nowSec float64) {
	if rec.Op == shared.OpRemove {
		delete(w.known, rec.SessionID)
		delete(w.peers, rec.SessionID)
		return
	}

	kp := w.known[rec.SessionID]
	if rec.Op == shared.OpFull {
		kp = knownPlayer{X: rec.X, Y: rec.Y, Angle: rec.Angle, Health: int(rec.Health), LastSeq: rec.LastSeq}
	} else {
		if rec.Fields&uint8(shared.FieldX) != 0 {
			kp.X = rec.X
		}
		if rec.Fields&uint8(shared.FieldY) != 0 {
			kp.Y = rec.Y
		}
		if rec.Fields&uint8(shared.FieldAngle) != 0 {
			kp.Angle = rec.Angle
		}
		if rec.Fields&uint8(shared.FieldHealth) != 0 {
			kp.Health = int(rec.Health)
		}
		if rec.Fields&uint8(shared.FieldSeq) != 0 {
			kp.LastSeq = rec.LastSeq
		}
	}
	w.known[rec.SessionID] = kp

	if rec.SessionID == w.SelfID {
		w.Self.Reconcile(kp.X, kp.Y, kp.Angle, kp.Health, kp.LastSeq)
		return
	}
	re, ok := w.peers[rec.SessionID]
	if !ok {
		re = NewRemoteEntity()
		w.peers[rec.SessionID] = re
	}
	re.Push(RemoteSnapshot{ReceivedAt: nowSec, X: kp.X, Y: kp.Y, Angle: kp.Angle, Health: kp.Health})
}

// RemovePlayer drops a peer that left the local view or the room.
func (w *World) RemovePlayer(sessionID string) {
	delete(w.peers, sessionID)
	delete(w.known, sessionID)
}

// ApplyBulletRecord registers a newly visible bullet (OpFull) or drops
// one that left view or was destroyed server-side (OpRemove). Bullets
// never carry OpDelta — their trajectory is immutable once spawned, so
// there is nothing to merge (see shared.BulletRecord).
func (w *World) ApplyBulletRecord(rec shared.BulletRecord, nowSec float64) {
	id := strconv.FormatUint(uint64(rec.BulletID), 10)
	if rec.Op == shared.OpRemove {
		delete(w.bullets, id)
		return
	}
	w.bullets[id] = NewRemoteBullet(rec.OwnerID, rec.X0, rec.Y0, rec.Angle, rec.Speed, nowSec)
}

// Peer returns a peer's RemoteEntity, for the renderer to call Render on.
func (w *World) Peer(sessionID string) (*RemoteEntity, bool) {
	re, ok := w.peers[sessionID]
	return re, ok
}

// Bullet returns a bullet's RemoteBullet, for the renderer to call XY on.
func (w *World) Bullet(bulletID string) (*RemoteBullet, bool) {
	rb, ok := w.bullets[bulletID]
	return rb, ok
}

// PeerIDs lists every currently-tracked peer, for iteration by the renderer.
func (w *World) PeerIDs() []string {
	ids := make([]string, 0, len(w.peers))
	for id := range w.peers {
		ids = append(ids, id)
	}
	return ids
}

// BulletIDs lists every currently-tracked bullet, for iteration by the renderer.
func (w *World) BulletIDs() []string {
	ids := make([]string, 0, len(w.bullets))
	for id := range w.bullets {
		ids = append(ids, id)
	}
	return ids
}
