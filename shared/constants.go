// Package shared holds the constants and wire types that the server and
// the client predictor/interpolator must agree on bit-for-bit. Duplicating
// these by hand between packages is how client/server drift bugs are born,
// so both sides import this package instead of redeclaring the numbers.
package shared

import "time"

// Tuning constants, identical on client and server (see the spec's tuning table).
const (
	MapSize   = 2000.0 // square arena side, centered at origin
	PlayerR   = 25.0   // player disk radius
	BulletR   = 5.0    // bullet disk radius
	PlayerSpeed = 200.0 // units/s
	BulletSpeed = 1200.0 // units/s
	BulletDamage = 20
	MaxHealth    = 500

	TickRate   = 60
	TickPeriod = time.Second / TickRate

	ShootCooldown = 200 * time.Millisecond

	ViewDistance       = 600.0
	VisibilityRefresh  = 1 * time.Second
	InterpolationDelay = 100 * time.Millisecond

	BulletMaxDistance = 1000.0
	BulletRemoveGrace = 200 * time.Millisecond

	// PlayerDamping is the linear damping applied to player bodies per
	// second: each tick a velocity is multiplied by
	// 1/(1+PlayerDamping/TickRate), about 0.86, so a velocity that gets no
	// fresh input decays toward zero over a few dozen ticks. An input with
	// no movement keys sets the velocity to zero directly.
	PlayerDamping = 10.0

	// SpawnMargin keeps spawn points away from the arena edge.
	SpawnMargin = 200.0

	// ReconnectGrace is the default window a disconnected-but-not-left
	// session's player body is kept alive and simulated.
	ReconnectGrace = 20 * time.Second

	// InputHistoryLimit bounds the client predictor's retained input
	// history (~2s at 60Hz). Acknowledged entries are dropped on
	// reconciliation; once the limit is exceeded the oldest entries are
	// trimmed from the front whether acknowledged or not, so this is a
	// dead-connection guard.
	InputHistoryLimit = 120

	// InterpolationBufferMaxAge drops remote snapshots older than this.
	InterpolationBufferMaxAge = 1 * time.Second

	// IntakeQueueLimit bounds a session's pending-input queue to roughly
	// one second of input at the client's expected send rate, favoring
	// the newest inputs when the cap is hit.
	IntakeQueueLimit = TickRate

	// MaxClientsPerRoom bounds room membership; joins beyond this are refused.
	MaxClientsPerRoom = 64
)
