package server

import "arenacore/shared"

// InterestManager maintains the spatial index of players and the per-
// session visibility set it feeds to the State Replicator. It is the only
// owner of both the quadtree and the visibility sets, per the ownership
// summary in the data model section.
//
// Two-tier design per §4.3: a 1Hz quadtree rebuild is plenty for players,
// who move slowly relative to ViewDistance, while a fast-moving bullet
// gets its visibility granted immediately at spawn time via a direct
// linear scan, bypassing the quadtree entirely so it never pops in late.
type InterestManager struct {
	tree *quadTree

	// visible[session] is the set of OTHER session ids currently in that
	// session's view, as of the most recent refresh.
	visible map[PlayerID]map[PlayerID]struct{}

	metrics *RoomMetrics
}

func NewInterestManager(metrics *RoomMetrics) *InterestManager {
	return &InterestManager{
		visible: make(map[PlayerID]map[PlayerID]struct{}),
		metrics: metrics,
	}
}

func playerBounds(p *Player) quadRect {
	return quadRect{p.X - 1, p.Y - 1, p.X + 1, p.Y + 1}
}

// Refresh rebuilds the quadtree from the current player set and
// recomputes every connected session's visible-peers set. Called once per
// shared.VisibilityRefresh by the room's tick loop.
func (im *InterestManager) Refresh(players map[PlayerID]*Player) {
	half := float32(shared.MapSize/2 + shared.ViewDistance)
	im.tree = newQuadTree(quadRect{-half, -half, half, half})
	for id, p := range players {
		im.tree.Insert(id, playerBounds(p))
	}

	for id, p := range players {
		query := quadRect{
			p.X - shared.ViewDistance, p.Y - shared.ViewDistance,
			p.X + shared.ViewDistance, p.Y + shared.ViewDistance,
		}
		found := make(map[PlayerID]struct{})
		im.tree.Query(query, found)
		delete(found, id)
		im.visible[id] = found
	}
	// Drop visibility sets for sessions that no longer have a player body.
	for id := range im.visible {
		if _, ok := players[id]; !ok {
			delete(im.visible, id)
		}
	}
}

// VisiblePeers returns the other player ids visible to session id as of
// the last Refresh.
func (im *InterestManager) VisiblePeers(id PlayerID) map[PlayerID]struct{} {
	return im.visible[id]
}

// BulletVisibleTo performs the sub-tick linear scan that immediately
// grants visibility of a freshly spawned bullet to every session whose
// player is within ViewDistance of the spawn point, independent of the
// 1Hz quadtree refresh.
func (im *InterestManager) BulletVisibleTo(players map[PlayerID]*Player, spawnX, spawnY float32) map[PlayerID]struct{} {
	out := make(map[PlayerID]struct{})
	for id, p := range players {
		dx, dy := p.X-spawnX, p.Y-spawnY
		dist := shared.Vec2{X: dx, Y: dy}.Length()
		if dist <= shared.ViewDistance {
			out[id] = struct{}{}
		}
	}
	return out
}
