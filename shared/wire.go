package shared

import "encoding/json"

// Control-channel message types. These travel as JSON text frames because
// they are low-frequency and not subject to the per-tick bandwidth budget
// that motivates the binary STATE_DELTA encoding in delta.go.
const (
	MsgJoin    = "join"
	MsgWelcome = "welcome"
	MsgInput   = "input"
	MsgShoot   = "shoot"
	MsgPing    = "ping"
	MsgPong    = "pong"
	MsgKill    = "kill"
	MsgHit     = "hit"
	MsgError   = "error"
	MsgLeave   = "leave"
)

// Envelope wraps every JSON control message with a type tag so a single
// websocket text frame can be dispatched without a priori knowledge of its
// payload shape.
type Envelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

func EncodeEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(b, &e)
	return e, err
}

func DecodePayload[T any](e Envelope) (T, error) {
	var out T
	if len(e.Payload) == 0 {
		return out, nil
	}
	err := json.Unmarshal(e.Payload, &out)
	return out, err
}

// JoinMsg is the first message a client must send after opening the
// transport stream. SessionID, if set, names a prior session this
// connection is trying to resume (see Room.Rejoin): the server honors it
// only while that session is still within its reconnection grace window,
// and falls back to minting a fresh session otherwise.
type JoinMsg struct {
	Room      string `json:"room"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// WelcomeMsg is the server's reply to a successful JOIN.
type WelcomeMsg struct {
	SessionID string `json:"sessionId"`
}

// InputMsg carries one movement intent, per-session sequence numbered by
// the client.
type InputMsg struct {
	Seq   uint32  `json:"seq"`
	W     bool    `json:"w"`
	A     bool    `json:"a"`
	S     bool    `json:"s"`
	D     bool    `json:"d"`
	Angle float32 `json:"angle"`
}

// ShootMsg requests a bullet spawn along angle, subject to cooldown.
type ShootMsg struct {
	Angle float32 `json:"angle"`
}

// KillMsg is broadcast to every session in the room, irrespective of view,
// when a player's health transitions to zero.
type KillMsg struct {
	TargetID string `json:"targetId"`
	KillerID string `json:"killerId"`
}

// HitMsg is the optional per-hit broadcast described as an open question in
// the design notes: redundant with the next STATE_DELTA, useful only for
// immediate UI feedback (hit markers, damage numbers).
type HitMsg struct {
	TargetID  string `json:"targetId"`
	ShooterID string `json:"shooterId"`
	Damage    int    `json:"damage"`
	Health    int    `json:"health"`
}

// ErrorMsg reports a connection-lifecycle error (e.g. room full) that must
// be surfaced to the client rather than silently dropped.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
