package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig serves and updates a room's runtime-tunable knobs.
// GET /admin/config?room=room-1  returns the current configuration.
// POST /admin/config?room=room-1 applies a partial JSON update.
func HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	room := GetRoomManager().GetOrCreateRoom(roomID)

	type cfg struct {
		MaxClients *int `json:"maxClients,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		cur := cfg{MaxClients: intPtr(room.MaxClients())}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cur)
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.MaxClients != nil {
			room.SetMaxClients(*body.MaxClients)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		if Log != nil {
			Log.Infow("admin config updated", "room", roomID, "maxClients", room.MaxClients())
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func intPtr(n int) *int { return &n }

// HandleMetrics reports a room's live tick count and counters.
// GET /metrics?room=room-1
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	room := GetRoomManager().GetOrCreateRoom(roomID)
	payload := map[string]any{
		"room":     roomID,
		"tick":     room.TickSeq(),
		"sessions": room.NumSessions(),
		"metrics":  room.Metrics().Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// HandleHealthz is a trivial liveness probe.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
