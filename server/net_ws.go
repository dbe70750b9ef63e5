package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arenacore/shared"
)

// outboundFrame is one wire-ready write, tagged with the websocket message
// kind it must go out as: state deltas travel binary, everything else
// (welcome/kill/pong/error) travels as JSON text.
type outboundFrame struct {
	msgType int
	data    []byte
}

// ClientConn is the lightweight write-side wrapper around one player's
// websocket connection: a single bounded outbound queue drained by one
// writePump goroutine. State deltas and control frames (KILL broadcasts,
// pong replies) share this one channel rather than two separate ones, so
// that the order Room enqueues them in — e.g. a tick's STATE_DELTA followed
// by that same tick's KILL broadcast — is also the order they hit the wire.
// A select across two independent channels cannot promise that: Go picks
// among ready cases pseudo-randomly, which could reorder a kill ahead of
// the delta it logically follows (§4.4/§6 FIFO guarantee per session).
type ClientConn struct {
	ws *websocket.Conn

	outbox chan outboundFrame

	metrics *RoomMetrics
}

func NewClientConn(ws *websocket.Conn, metrics *RoomMetrics) *ClientConn {
	return &ClientConn{
		ws:      ws,
		outbox:  make(chan outboundFrame, 40),
		metrics: metrics,
	}
}

// Enqueue queues a STATE_DELTA frame, non-blocking: a full queue drops the
// newest frame rather than stalling the simulation tick. A dropped delta is
// only counted: the replicator has already recorded its values as sent, so
// the client sees those fields again only when they next change or when the
// entity re-enters its view and is sent in full.
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.outbox <- outboundFrame{websocket.BinaryMessage, b}:
	default:
		if c.metrics != nil {
			c.metrics.IncChanFullDiscarded()
		}
	}
}

// SendKill queues a KILL broadcast. Unlike state deltas, a dropped kill is
// a user-visible loss with no later retransmission, so dropping it is
// logged, not just counted.
func (c *ClientConn) SendKill(b []byte) {
	c.sendControl(b)
}

// sendControl queues any JSON control frame (KILL, pong) onto the same
// ordered outbox as state deltas.
func (c *ClientConn) sendControl(b []byte) {
	select {
	case c.outbox <- outboundFrame{websocket.TextMessage, b}:
	default:
		if c.metrics != nil {
			c.metrics.IncChanFullDiscarded()
		}
		if Log != nil {
			Log.Warnw("dropped control frame, send queue full")
		}
	}
}

// Close closes the underlying socket. The outbox channel is not closed.
func (c *ClientConn) Close() {
	_ = c.ws.Close()
}

// CloseError sends a close frame carrying CloseInternalServerErr and reason
// before tearing down the socket, for a room-level fault the client should
// be able to distinguish from an ordinary disconnect.
func (c *ClientConn) CloseError(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, reason)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for frame := range c.outbox {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(frame.msgType, frame.data); err != nil {
			return
		}
	}
}

// readPump decodes JOIN/INPUT/SHOOT/PING/LEAVE text frames and forwards
// them to the room. Malformed or unrecognized messages are dropped (logged
// and counted, see dropMalformed) and the session stays open, per §7.
//
// Per §6, a consensual close removes the player immediately; anything
// else (abrupt transport drop, an abnormal close code) starts the
// reconnection grace window instead. Consent is signaled either by an
// explicit LEAVE message or by the client's close frame itself carrying a
// normal/going-away close code.
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()

	consented := false
	defer func() { room.Leave(playerID, consented) }()

	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				consented = true
			}
			return
		}
		env, err := shared.DecodeEnvelope(payload)
		if err != nil {
			c.dropMalformed("bad envelope", playerID, err)
			continue
		}
		switch env.Type {
		case shared.MsgInput:
			in, err := shared.DecodePayload[shared.InputMsg](env)
			if err != nil {
				c.dropMalformed("bad input payload", playerID, err)
				continue
			}
			room.OnInput(playerID, Input{Seq: in.Seq, W: in.W, A: in.A, S: in.S, D: in.D, Angle: in.Angle})
		case shared.MsgShoot:
			sh, err := shared.DecodePayload[shared.ShootMsg](env)
			if err != nil {
				c.dropMalformed("bad shoot payload", playerID, err)
				continue
			}
			room.OnShoot(playerID, sh.Angle)
		case shared.MsgPing:
			c.replyPong()
		case shared.MsgLeave:
			consented = true
			return
		default:
			c.dropMalformed("unrecognized message type", playerID, nil)
		}
	}
}

// dropMalformed records a message drop per §7/SPEC_FULL.md's ambient
// observability requirement: a debug log line plus a metrics counter, never
// louder than Debugw since a malformed frame from one client is routine
// noise, not a room-level fault.
func (c *ClientConn) dropMalformed(reason string, playerID PlayerID, err error) {
	if c.metrics != nil {
		c.metrics.IncMalformedDropped()
	}
	if Log != nil {
		Log.Debugw("drop malformed message", "reason", reason, "playerID", playerID, "err", err)
	}
}

func (c *ClientConn) replyPong() {
	b, err := shared.EncodeEnvelope(shared.MsgPong, nil)
	if err != nil {
		return
	}
	c.sendControl(b)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Demo/dev posture: accept all origins. Lock this down for a
		// production deployment.
		return true
	},
}

// HandleWS upgrades the HTTP connection, performs the JOIN handshake, and
// starts the read/write pumps. The JOIN message must be the first frame;
// anything else as a first message is a malformed connection attempt and
// the socket is closed.
func HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if Log != nil {
			Log.Warnw("ws upgrade failed", "err", err)
		}
		return
	}

	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, payload, err := ws.ReadMessage()
	if err != nil {
		ws.Close()
		return
	}
	env, err := shared.DecodeEnvelope(payload)
	if err != nil || env.Type != shared.MsgJoin {
		ws.Close()
		return
	}
	join, err := shared.DecodePayload[shared.JoinMsg](env)
	if err != nil || join.Room == "" {
		ws.Close()
		return
	}

	room := GetRoomManager().GetOrCreateRoom(join.Room)
	client := NewClientConn(ws, room.Metrics())

	var sess *Session
	if join.SessionID != "" {
		sess, err = room.Rejoin(PlayerID(join.SessionID), client)
	}
	if sess == nil {
		sess, err = room.Join(join.Name, client)
	}
	if err != nil {
		errMsg, _ := shared.EncodeEnvelope(shared.MsgError, shared.ErrorMsg{Code: "room_full", Message: err.Error()})
		ws.WriteMessage(websocket.TextMessage, errMsg)
		ws.Close()
		return
	}

	welcome, _ := shared.EncodeEnvelope(shared.MsgWelcome, shared.WelcomeMsg{SessionID: string(sess.ID)})
	ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := ws.WriteMessage(websocket.TextMessage, welcome); err != nil {
		room.Leave(sess.ID, true)
		return
	}

	ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	go client.writePump()
	go client.readPump(room, sess.ID)
}
