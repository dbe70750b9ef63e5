package server

import (
	"math"

	"arenacore/shared"
)

// PlayerID is a session's opaque identity, assigned by the server at JOIN.
type PlayerID string

// BulletID is a per-room monotonic bullet identity.
type BulletID uint32

// Player is the authoritative server entity described by the data model:
// position is the center of a disk of radius shared.PlayerR, health is
// clamped to [0, shared.MaxHealth], and lastProcessedSeq only advances for
// inputs that were actually simulated (dead players' inputs are dropped
// without advancing it).
type Player struct {
	ID    PlayerID
	Name  string
	X, Y  float32
	VX, VY float32
	Angle float32
	Health int

	lastProcessedSeq uint32
}

// Bullet is the authoritative transient entity. SpawnX/SpawnY are the
// replicated position and are never overwritten with the live physics
// position — the client reconstructs the live position itself from
// (SpawnX, SpawnY, Angle, Speed) and elapsed time.
type Bullet struct {
	ID      BulletID
	OwnerID PlayerID
	SpawnX, SpawnY float32
	Angle   float32
	Speed   float32

	spawnedAt float64 // simulation clock seconds at spawn
	removed   bool
	removeAt  float64 // simulation clock seconds the state-map entry should disappear
}

// LiveXY returns the bullet's current physics position given the
// simulation clock's current time in seconds.
func (b *Bullet) LiveXY(nowSec float64) (float32, float32) {
	dt := float32(nowSec - b.spawnedAt)
	x := b.SpawnX + float32(math.Cos(float64(b.Angle)))*b.Speed*dt
	y := b.SpawnY + float32(math.Sin(float64(b.Angle)))*b.Speed*dt
	return x, y
}

// DistanceFromSpawn returns how far the bullet's live position is from its
// spawn point, used for the BulletMaxDistance cutoff.
func (b *Bullet) DistanceFromSpawn(nowSec float64) float32 {
	x, y := b.LiveXY(nowSec)
	dx, dy := x-b.SpawnX, y-b.SpawnY
	return shared.Vec2{X: dx, Y: dy}.Length()
}
