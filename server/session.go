package server

import (
	"time"

	"arenacore/shared"
)

// Conn is the narrow send-side interface a Session needs from its
// transport. net_ws.go's ClientConn implements it; tests use a fake.
type Conn interface {
	Enqueue(b []byte)
	SendKill(b []byte)
	Close()
	CloseError(reason string)
}

// Session wraps one connected client's Player with the transport-facing
// bookkeeping the spec's connection lifecycle and reconnection grace need:
// grounded on the teacher's Player.Conn field, generalized to also track
// shoot cooldown and the reconnection grace deadline instead of destroying
// the player the moment the socket drops.
type Session struct {
	ID   PlayerID
	Conn Conn

	Player *Player
	intake *IntakeQueue

	lastShootAt time.Time // server clock of the last admitted SHOOT

	// disconnected is non-zero once the transport has dropped
	// non-consensually; the player body keeps simulating until
	// reconnectDeadline, or is fully destroyed immediately on consented leave.
	disconnected      bool
	reconnectDeadline time.Time
}

func newSession(id PlayerID, name string, conn Conn, spawnX, spawnY float32) *Session {
	return &Session{
		ID:   id,
		Conn: conn,
		Player: &Player{
			ID:     id,
			Name:   name,
			X:      spawnX,
			Y:      spawnY,
			Health: shared.MaxHealth,
		},
		intake: newIntakeQueue(),
	}
}

// ShootReady reports whether enough time has passed since the session's
// last admitted shot to satisfy shared.ShootCooldown.
func (s *Session) ShootReady(now time.Time) bool {
	return s.lastShootAt.IsZero() || now.Sub(s.lastShootAt) >= shared.ShootCooldown
}
