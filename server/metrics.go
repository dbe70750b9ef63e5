package server

import "sync/atomic"

// RoomMetrics records per-room runtime counters for the /metrics endpoint.
// Extended from the original input-admission counters with the ones this
// core's richer simulation needs: bullets, kills, view-set churn.
type RoomMetrics struct {
	TickCount         int64 // ticks processed
	InputsAccepted    int64 // inputs actually simulated
	RateLimited       int64 // shots refused for cooldown/death
	OldSeqIgnored     int64 // inputs dropped for stale/duplicate seq
	ChanFullDiscarded int64 // outbound messages dropped, full send queue
	MalformedDropped  int64 // inbound frames that failed to decode or named an unknown type
	TotalTickNs       int64 // cumulative tick duration

	BulletsSpawned int64
	BulletsRemoved int64
	Hits           int64
	Kills          int64

	ViewAdds    int64
	ViewRemoves int64
}

func (m *RoomMetrics) IncAccepted()           { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncRateLimited()        { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncOldSeqIgnored()      { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *RoomMetrics) IncChanFullDiscarded()  { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncMalformedDropped()   { atomic.AddInt64(&m.MalformedDropped, 1) }
func (m *RoomMetrics) IncBulletsSpawned()     { atomic.AddInt64(&m.BulletsSpawned, 1) }
func (m *RoomMetrics) IncBulletsRemoved()     { atomic.AddInt64(&m.BulletsRemoved, 1) }
func (m *RoomMetrics) IncHits()               { atomic.AddInt64(&m.Hits, 1) }
func (m *RoomMetrics) IncKills()              { atomic.AddInt64(&m.Kills, 1) }
func (m *RoomMetrics) IncViewAdds(n int64)    { atomic.AddInt64(&m.ViewAdds, n) }
func (m *RoomMetrics) IncViewRemoves(n int64) { atomic.AddInt64(&m.ViewRemoves, n) }

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy suitable for JSON encoding over HTTP.
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"old_seq_ignored":     atomic.LoadInt64(&m.OldSeqIgnored),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"malformed_dropped":   atomic.LoadInt64(&m.MalformedDropped),
		"bullets_spawned":     atomic.LoadInt64(&m.BulletsSpawned),
		"bullets_removed":     atomic.LoadInt64(&m.BulletsRemoved),
		"hits":                atomic.LoadInt64(&m.Hits),
		"kills":               atomic.LoadInt64(&m.Kills),
		"view_adds":           atomic.LoadInt64(&m.ViewAdds),
		"view_removes":        atomic.LoadInt64(&m.ViewRemoves),
		"avg_tick_ms":         avgMs,
	}
}
