package client

import "arenacore/shared"

// RemoteSnapshot is one timestamped authoritative sample of a remote
// player's state, as carried by a STATE_DELTA record (full or delta,
// already merged by the caller against its last-known values).
type RemoteSnapshot struct {
	// ReceivedAt is the client's local monotonic clock time, in seconds,
	// at which this sample arrived — NOT a server timestamp, since the
	// wire carries no per-entity send time, only a tick counter. The
	// interpolator only ever compares receive times against each other, so
	// clock skew between client and server is irrelevant.
	ReceivedAt float64

	X, Y, Angle float32
	Health      int
}

// RemoteEntity buffers a bounded history of snapshots for one remote
// player and renders a delayed, interpolated position from it, per the
// spec's dead-reckoning design: the view always lags real time by
// shared.InterpolationDelay so there are (almost) always two straddling
// samples to lerp between, trading a small fixed latency for eliminating
// visible snapping on the common case of in-order, mildly-jittered
// delivery.
type RemoteEntity struct {
	buf []RemoteSnapshot
}

func NewRemoteEntity() *RemoteEntity {
	return &RemoteEntity{buf: make([]RemoteSnapshot, 0, 8)}
}

// Push appends a freshly received snapshot and evicts anything older than
// shared.InterpolationBufferMaxAge relative to it, per the spec's
// out-of-order/stale-data edge case: old data is dropped rather than
// allowed to corrupt the render-time lerp.
func (e *RemoteEntity) Push(s RemoteSnapshot) {
	e.buf = append(e.buf, s)
	cutoff := s.ReceivedAt - shared.InterpolationBufferMaxAge.Seconds()
	i := 0
	for i < len(e.buf) && e.buf[i].ReceivedAt < cutoff {
		i++
	}
	if i > 0 {
		e.buf = e.buf[i:]
	}
}

// Render returns the interpolated state to draw at local clock time
// nowSec, sampling shared.InterpolationDelay seconds in the past. Before
// two samples straddling the render time are available it falls back to
// the newest (or oldest, if every sample is still in the future — the
// first tick after the entity appears) known sample rather than
// extrapolating, since dead-reckoning past the last real sample is the
// bullet renderer's job, not the remote-player interpolator's.
func (e *RemoteEntity) Render(nowSec float64) (RemoteSnapshot, bool) {
	if len(e.buf) == 0 {
		return RemoteSnapshot{}, false
	}
	renderAt := nowSec - shared.InterpolationDelay.Seconds()

	if renderAt <= e.buf[0].ReceivedAt {
		return e.buf[0], true
	}
	last := e.buf[len(e.buf)-1]
	if renderAt >= last.ReceivedAt {
		return last, true
	}

	for i := 0; i < len(e.buf)-1; i++ {
		a, b := e.buf[i], e.buf[i+1]
		if renderAt >= a.ReceivedAt && renderAt <= b.ReceivedAt {
			span := b.ReceivedAt - a.ReceivedAt
			if span <= 0 {
				return b, true
			}
			t := float32((renderAt - a.ReceivedAt) / span)
			return RemoteSnapshot{
				ReceivedAt: renderAt,
				X:          shared.Lerp(a.X, b.X, t),
				Y:          shared.Lerp(a.Y, b.Y, t),
				Angle:      shared.LerpAngle(a.Angle, b.Angle, t),
				Health:     b.Health,
			}, true
		}
	}
	return last, true
}
