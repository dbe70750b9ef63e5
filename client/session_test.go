package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arenacore/shared"
)

func TestWorldAppliesSelfFullAsReconciliation(t *testing.T) {
	w := NewWorld("self", 0, 0)
	w.Self.ApplyLocalInput(true, false, false, false, 0)

	w.ApplyPlayerRecord(shared.PlayerRecord{
		SessionID: "self", Op: shared.OpFull,
		X: 0, Y: -3.33, Angle: 0, Health: shared.MaxHealth, LastSeq: 1,
	}, 0)

	require.Equal(t, float32(-3.33), w.Self.Local.Y)
}

func TestWorldAppliesPlayerDeltaMergingAgainstLastKnown(t *testing.T) {
	w := NewWorld("self", 0, 0)

	// A full record establishes the peer's baseline X/Y.
	w.ApplyPlayerRecord(shared.PlayerRecord{
		SessionID: "peer", Op: shared.OpFull,
		X: 100, Y: 200, Angle: 0, Health: shared.MaxHealth,
	}, 0)

	// A later delta only flips Health — X/Y are omitted from the wire
	// record entirely, and must NOT be zeroed by this update.
	w.ApplyPlayerRecord(shared.PlayerRecord{
		SessionID: "peer", Op: shared.OpDelta,
		Fields: uint8(shared.FieldHealth), Health: 480,
	}, 1)

	re, ok := w.Peer("peer")
	require.True(t, ok)
	got, ok := re.Render(10) // far enough past InterpolationDelay to hit the newest sample
	require.True(t, ok)
	require.Equal(t, float32(100), got.X)
	require.Equal(t, float32(200), got.Y)
	require.Equal(t, 480, got.Health)
}

func TestWorldAppliesSelfDeltaMergingAgainstLastKnown(t *testing.T) {
	w := NewWorld("self", 0, 0)
	w.Self.ApplyLocalInput(true, false, false, false, 0) // seq 1

	// Server acks seq 1 with a full record.
	w.ApplyPlayerRecord(shared.PlayerRecord{
		SessionID: "self", Op: shared.OpFull,
		X: 0, Y: -3.33, Angle: 0, Health: shared.MaxHealth, LastSeq: 1,
	}, 0)

	// A later tick damages self without any new input: the delta carries
	// only Health, no FieldSeq, no FieldX/Y — reconciliation must reuse
	// the last-known position and ack instead of snapping to zero.
	w.ApplyPlayerRecord(shared.PlayerRecord{
		SessionID: "self", Op: shared.OpDelta,
		Fields: uint8(shared.FieldHealth), Health: 480,
	}, 2)

	require.Equal(t, float32(-3.33), w.Self.Local.Y)
	require.Equal(t, 480, w.Self.Local.Health)
}

func TestWorldRemovePlayerOnOpRemove(t *testing.T) {
	w := NewWorld("self", 0, 0)
	w.ApplyPlayerRecord(shared.PlayerRecord{SessionID: "peer", Op: shared.OpFull, X: 10, Y: 10}, 0)
	_, ok := w.Peer("peer")
	require.True(t, ok)

	w.ApplyPlayerRecord(shared.PlayerRecord{SessionID: "peer", Op: shared.OpRemove}, 1)
	_, ok = w.Peer("peer")
	require.False(t, ok)
}

func TestWorldTracksAndRemovesBullets(t *testing.T) {
	w := NewWorld("self", 0, 0)
	w.ApplyBulletRecord(shared.BulletRecord{
		BulletID: 1, Op: shared.OpFull, OwnerID: "peer", X0: 0, Y0: 0, Angle: 0, Speed: shared.BulletSpeed,
	}, 0)

	rb, ok := w.Bullet("1")
	require.True(t, ok)
	require.Equal(t, "peer", rb.OwnerID)

	w.ApplyBulletRecord(shared.BulletRecord{BulletID: 1, Op: shared.OpRemove}, 1)
	_, ok = w.Bullet("1")
	require.False(t, ok)
}

func TestWorldApplyStateDeltaAppliesEveryRecord(t *testing.T) {
	w := NewWorld("self", 0, 0)
	d := shared.StateDelta{
		Tick: 1,
		Players: []shared.PlayerRecord{
			{SessionID: "self", Op: shared.OpFull, Health: shared.MaxHealth},
			{SessionID: "peer", Op: shared.OpFull, X: 5, Y: 5, Health: shared.MaxHealth},
		},
		Bullets: []shared.BulletRecord{
			{BulletID: 1, Op: shared.OpFull, OwnerID: "peer", Speed: shared.BulletSpeed},
		},
	}
	w.ApplyStateDelta(d, 0)

	_, ok := w.Peer("peer")
	require.True(t, ok)
	_, ok = w.Bullet("1")
	require.True(t, ok)
}
