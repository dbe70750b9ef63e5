package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"arenacore/shared"
)

// Room is one arena's authoritative world: a single simulation timeline
// shared by every connected session, per §5. All mutation of authoritative
// state — joins, leaves, shots, the physics tick, and replication —
// happens while holding mu, which keeps the implementation simple while
// still satisfying the ordering and serialization guarantees the spec
// leaves open to implementation choice.
type Room struct {
	ID string

	mu       sync.Mutex
	sim      *Simulation
	interest *InterestManager
	replic   *Replicator
	metrics  *RoomMetrics

	sessions map[PlayerID]*Session

	maxClients int
	tickSeq    uint64

	stop chan struct{}
	once sync.Once
}

// NewRoom creates a room's data structures; StartTicker must be called
// separately to begin simulating.
func NewRoom(id string) *Room {
	metrics := &RoomMetrics{}
	return &Room{
		ID:         id,
		sim:        NewSimulation(metrics),
		interest:   NewInterestManager(metrics),
		replic:     NewReplicator(metrics),
		metrics:    metrics,
		sessions:   make(map[PlayerID]*Session),
		maxClients: shared.MaxClientsPerRoom,
		stop:       make(chan struct{}),
	}
}

// Join admits a new session: assigns a random in-bounds spawn point,
// creates the Player body, and registers the Session under a fresh
// session id. Refuses admission once the room is at capacity.
func (r *Room) Join(name string, conn Conn) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxClients {
		return nil, ErrRoomFull
	}

	id := PlayerID(uuid.NewString())
	x, y := r.sim.SpawnPoint()
	sess := newSession(id, name, conn, x, y)
	r.sessions[id] = sess
	r.sim.AddPlayer(sess.Player)
	return sess, nil
}

// Rejoin re-attaches a new Conn to a session that is still within its
// reconnection grace window, per §2's "grace window for reconnection" and
// §9's note that non-consented close allows manual reconnection. It is the
// only way a returning client keeps its still-simulated Player body and
// PlayerID instead of joining as a brand-new player.
func (r *Room) Rejoin(id PlayerID, conn Conn) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if !sess.disconnected || time.Now().After(sess.reconnectDeadline) {
		return nil, ErrSessionNotGraced
	}
	sess.Conn = conn
	sess.disconnected = false
	sess.reconnectDeadline = time.Time{}
	return sess, nil
}

// Leave removes a session. A consented leave destroys the player
// immediately; a non-consented transport drop instead starts the
// reconnection grace window, during which the body keeps simulating.
func (r *Room) Leave(id PlayerID, consented bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return
	}
	if consented {
		r.destroySession(sess)
		return
	}
	sess.disconnected = true
	sess.reconnectDeadline = time.Now().Add(shared.ReconnectGrace)
}

// destroySession fully removes a session and its player body. Caller must
// hold r.mu.
func (r *Room) destroySession(sess *Session) {
	r.sim.RemovePlayer(sess.ID)
	r.replic.RemoveSession(sess.ID)
	delete(r.sessions, sess.ID)
	if sess.Conn != nil {
		sess.Conn.Close()
	}
}

// OnInput enqueues one input on the named session's intake queue. It holds
// r.mu only for the session lookup and pushes after releasing it: the
// intake queue has its own lock and is the sole cross-goroutine boundary by
// design (§5), so a bursty reader never holds the room lock while queueing.
func (r *Room) OnInput(id PlayerID, in Input) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	sess.intake.Push(in)
}

// OnShoot enforces the per-shooter cooldown and, if admitted, spawns a
// bullet and grants it immediate visibility to every nearby session.
// Silent on refusal per §7 — the client's own local cooldown should
// already suppress the common case.
func (r *Room) OnShoot(id PlayerID, angle float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok || sess.Player.Health <= 0 {
		if ok {
			r.metrics.IncRateLimited()
		}
		return
	}
	now := time.Now()
	if !sess.ShootReady(now) {
		r.metrics.IncRateLimited()
		return
	}
	sess.lastShootAt = now

	b := r.sim.SpawnBullet(sess.Player, angle)
	visible := r.interest.BulletVisibleTo(r.sim.Players(), b.SpawnX, b.SpawnY)
	visible[id] = struct{}{} // the shooter always sees its own bullet
	r.replic.GrantBulletVisibility(b.ID, visible)
}

// StartTicker launches the fixed-rate simulation loop and the slower
// visibility-refresh and grace-expiry loops, each funneling its work
// through r.mu so authoritative state only ever mutates on the simulation
// timeline.
func (r *Room) StartTicker() {
	go func() {
		ticker := time.NewTicker(shared.TickPeriod)
		defer ticker.Stop()
		refresh := time.NewTicker(shared.VisibilityRefresh)
		defer refresh.Stop()
		grace := time.NewTicker(time.Second)
		defer grace.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.safeCall(r.tick)
			case <-refresh.C:
				r.safeCall(r.refreshInterest)
			case <-grace.C:
				r.safeCall(r.expireGrace)
			}
		}
	}()
}

// safeCall runs fn with a panic guard. A physics/CCD/quadtree edge case
// reachable only by this room's current entity layout must not take down
// every other room in the process — per spec.md's "fatal to the room"
// framing, only this room is torn down.
func (r *Room) safeCall(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.crashTeardown(rec)
		}
	}()
	fn()
}

// crashTeardown logs the panic, stops this room's ticker, closes every
// session's transport with an error close-frame, and removes the room from
// the manager so a later JOIN mints a fresh room instead of resuming one
// whose authoritative state may be inconsistent.
func (r *Room) crashTeardown(rec any) {
	if Log != nil {
		Log.Errorw("panic recovered in room tick, tearing down room", "room", r.ID, "panic", rec)
	}
	r.Stop()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[PlayerID]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		if sess.Conn != nil {
			sess.Conn.CloseError("room crashed")
		}
	}

	GetRoomManager().RemoveRoom(r.ID)
}

// Stop halts the room's ticker loop; idempotent.
func (r *Room) Stop() {
	r.once.Do(func() { close(r.stop) })
}

// tick drains every session's intake queue, advances the simulation one
// fixed step, replicates the result to each session, and broadcasts any
// kills — the per-tick algorithm from §4.1/§4.4.
func (r *Room) tick() {
	start := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	inputs := make(map[PlayerID][]Input, len(r.sessions))
	for id, sess := range r.sessions {
		if queued := sess.intake.Drain(); len(queued) > 0 {
			inputs[id] = queued
		}
	}

	kills := r.sim.Step(inputs)
	r.tickSeq++

	for _, id := range r.sim.LastRemovedBullets() {
		r.replic.ForgetBullet(id)
	}

	for id, sess := range r.sessions {
		delta := r.replic.BuildDelta(id, r.tickSeq, r.sim, r.interest)
		if len(delta.Players) == 0 && len(delta.Bullets) == 0 {
			continue
		}
		if sess.Conn != nil {
			sess.Conn.Enqueue(shared.EncodeStateDelta(delta))
		}
	}

	for _, k := range kills {
		r.broadcastKill(k)
	}

	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

func (r *Room) broadcastKill(k KillEvent) {
	b, err := shared.EncodeEnvelope(shared.MsgKill, shared.KillMsg{
		TargetID: string(k.TargetID),
		KillerID: string(k.KillerID),
	})
	if err != nil {
		return
	}
	// Kill broadcasts go out irrespective of view (§4.4), through
	// Conn.SendKill, which queues them on the same ordered outbound queue as
	// this tick's state deltas; if that queue is full the kill is dropped
	// and logged.
	for _, sess := range r.sessions {
		if sess.Conn != nil {
			sess.Conn.SendKill(b)
		}
	}
}

func (r *Room) refreshInterest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interest.Refresh(r.sim.Players())
}

// expireGrace fully destroys any disconnected session whose reconnection
// window has elapsed.
func (r *Room) expireGrace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, sess := range r.sessions {
		if sess.disconnected && now.After(sess.reconnectDeadline) {
			r.destroySession(sess)
		}
	}
}

// NumSessions returns the current session count, for admin/metrics.
func (r *Room) NumSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TickSeq returns the room's current tick counter, for /metrics.
func (r *Room) TickSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickSeq
}

// Metrics exposes the room's metrics for the /metrics HTTP handler.
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

// MaxClients / SetMaxClients let the admin endpoint tune room capacity.
func (r *Room) MaxClients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxClients
}

func (r *Room) SetMaxClients(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > 0 {
		r.maxClients = n
	}
}
