package server

import "errors"

// ErrRoomFull is returned by Room.Join once the room is at its capacity
// (shared.MaxClientsPerRoom unless changed through Room.SetMaxClients) —
// matchmaking should have routed the client
// elsewhere, per §7's resource-exhaustion error kind.
var ErrRoomFull = errors.New("room full")

// ErrUnknownSession is returned when an operation names a session id the
// room has never heard of (already left, or never joined).
var ErrUnknownSession = errors.New("unknown session")

// ErrSessionNotGraced is returned by Room.Rejoin when the named session
// exists but is not currently within its reconnection grace window (it
// never disconnected, or its deadline has passed but it has not yet been
// destroyed). A session already destroyed yields ErrUnknownSession.
var ErrSessionNotGraced = errors.New("session not within reconnect grace")
