package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateDeltaRoundTrip(t *testing.T) {
	d := StateDelta{
		Tick: 42,
		Players: []PlayerRecord{
			{SessionID: "alice", Op: OpFull, X: 1.5, Y: -2.5, Angle: 0.25, Health: 480, LastSeq: 7},
			{SessionID: "bob", Op: OpDelta, Fields: uint8(FieldX | FieldHealth), X: 3, Health: 300},
			{SessionID: "carol", Op: OpRemove},
		},
		Bullets: []BulletRecord{
			{BulletID: 1, Op: OpFull, OwnerID: "alice", X0: 10, Y0: 20, Angle: 1.0, Speed: 1200},
			{BulletID: 2, Op: OpRemove},
		},
	}

	encoded := EncodeStateDelta(d)
	got, err := DecodeStateDelta(encoded)
	require.NoError(t, err)

	require.Equal(t, d.Tick, got.Tick)
	require.Len(t, got.Players, 3)
	require.Equal(t, "alice", got.Players[0].SessionID)
	require.Equal(t, OpFull, got.Players[0].Op)
	require.InDelta(t, 1.5, got.Players[0].X, 1e-6)
	require.InDelta(t, -2.5, got.Players[0].Y, 1e-6)
	require.Equal(t, int32(480), got.Players[0].Health)
	require.Equal(t, uint32(7), got.Players[0].LastSeq)

	require.Equal(t, "bob", got.Players[1].SessionID)
	require.Equal(t, OpDelta, got.Players[1].Op)
	require.InDelta(t, 3, got.Players[1].X, 1e-6)
	require.Equal(t, int32(300), got.Players[1].Health)
	require.InDelta(t, 0, got.Players[1].Y, 1e-6) // untouched field defaults to zero

	require.Equal(t, "carol", got.Players[2].SessionID)
	require.Equal(t, OpRemove, got.Players[2].Op)

	require.Len(t, got.Bullets, 2)
	require.Equal(t, OpFull, got.Bullets[0].Op)
	require.Equal(t, "alice", got.Bullets[0].OwnerID)
	require.InDelta(t, 10, got.Bullets[0].X0, 1e-6)
	require.Equal(t, OpRemove, got.Bullets[1].Op)
}

func TestStateDeltaEmpty(t *testing.T) {
	d := StateDelta{Tick: 1}
	encoded := EncodeStateDelta(d)
	got, err := DecodeStateDelta(encoded)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Tick)
	require.Empty(t, got.Players)
	require.Empty(t, got.Bullets)
}

func TestDecodeStateDeltaRejectsTrailingBytes(t *testing.T) {
	d := StateDelta{Tick: 1}
	encoded := append(EncodeStateDelta(d), 0xFF)
	_, err := DecodeStateDelta(encoded)
	require.Error(t, err)
}
