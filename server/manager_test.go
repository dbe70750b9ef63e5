package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRoomManagerIsASingleton(t *testing.T) {
	require.Same(t, GetRoomManager(), GetRoomManager())
}

func TestGetOrCreateRoomReturnsSameRoomForSameID(t *testing.T) {
	m := &RoomManager{rooms: make(map[string]*Room)}
	a := m.GetOrCreateRoom("x")
	a.Stop()
	b := m.GetOrCreateRoom("x")
	require.Same(t, a, b)
}

func TestRoomNamesListsEveryRoom(t *testing.T) {
	m := &RoomManager{rooms: make(map[string]*Room)}
	m.GetOrCreateRoom("r1").Stop()
	m.GetOrCreateRoom("r2").Stop()
	require.ElementsMatch(t, []string{"r1", "r2"}, m.RoomNames())
}
