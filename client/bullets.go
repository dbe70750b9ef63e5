package client

import "math"

// RemoteBullet is the client's reconstruction of a bullet's trajectory
// from the single OpFull record the server ever sends for it: spawn
// point, angle and speed fully determine position at any later time, so
// the client never needs another packet until the REMOVE arrives.
type RemoteBullet struct {
	OwnerID            string
	SpawnX, SpawnY     float32
	Angle, Speed       float32
	SpawnedAtLocalSec  float64 // client clock time the OpFull record was received
	hitReported        bool
}

func NewRemoteBullet(ownerID string, x0, y0, angle, speed float32, nowSec float64) *RemoteBullet {
	return &RemoteBullet{
		OwnerID:           ownerID,
		SpawnX:            x0,
		SpawnY:            y0,
		Angle:             angle,
		Speed:             speed,
		SpawnedAtLocalSec: nowSec,
	}
}

// XY extrapolates the bullet's position at local clock time nowSec,
// purely from the spawn descriptor — the same closed-form motion the
// server's Bullet.LiveXY uses, so a perfectly-timed client renders the
// bullet in the same place the server would compute for that instant.
func (b *RemoteBullet) XY(nowSec float64) (float32, float32) {
	dt := float32(nowSec - b.SpawnedAtLocalSec)
	x := b.SpawnX + cos32(b.Angle)*b.Speed*dt
	y := b.SpawnY + sin32(b.Angle)*b.Speed*dt
	return x, y
}

// MaybeReportHit returns true the first time it is called and false on
// every later call; it does no collision test itself — the caller decides
// that a visual collision happened and uses this to fire feedback at most
// once per bullet. This is advisory client-side feedback only — a
// muzzle flash or hit marker drawn a frame early or late changes nothing
// about outcome, since the authoritative KILL broadcast and the next
// STATE_DELTA always override it. Callers must never use this to change
// health or any other state that matters for gameplay.
func (b *RemoteBullet) MaybeReportHit() bool {
	if b.hitReported {
		return false
	}
	b.hitReported = true
	return true
}

func cos32(a float32) float32 { return float32(math.Cos(float64(a))) }
func sin32(a float32) float32 { return float32(math.Sin(float64(a))) }
