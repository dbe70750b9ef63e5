package server

import (
	"math"

	"arenacore/shared"
)

// clampToArena enforces invariant 5: no player's center may leave
// [-MapSize/2+PlayerR, MapSize/2-PlayerR] on either axis. Because the
// arena's four walls are axis-aligned and players are circles, clamping
// the center is equivalent to a wall body pushing the disk back in —
// the player slides freely along the wall since only the violating axis
// is corrected.
func clampToArena(p *Player) {
	lo := float32(-shared.MapSize/2 + shared.PlayerR)
	hi := float32(shared.MapSize/2 - shared.PlayerR)
	if p.X < lo {
		p.X = lo
		if p.VX < 0 {
			p.VX = 0
		}
	} else if p.X > hi {
		p.X = hi
		if p.VX > 0 {
			p.VX = 0
		}
	}
	if p.Y < lo {
		p.Y = lo
		if p.VY < 0 {
			p.VY = 0
		}
	} else if p.Y > hi {
		p.Y = hi
		if p.VY > 0 {
			p.VY = 0
		}
	}
}

// resolvePlayerOverlaps enforces invariant 4 (no two player centers closer
// than 2*PlayerR) by pushing every overlapping pair apart symmetrically
// along the line connecting their centers. A fixed small number of passes
// gives a stable approximate solve for the handful of players that share
// an arena — real constraint solvers (Box2D et al.) do the same
// iterative-relaxation trick, just with more passes and a broader
// feature set than this core needs.
const collisionPasses = 4

func resolvePlayerOverlaps(players []*Player) {
	minDist := float32(2 * shared.PlayerR)
	for pass := 0; pass < collisionPasses; pass++ {
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				a, b := players[i], players[j]
				dx, dy := b.X-a.X, b.Y-a.Y
				dist := float32(math.Hypot(float64(dx), float64(dy)))
				if dist >= minDist || dist < 1e-6 {
					if dist < 1e-6 {
						// Exactly coincident: nudge along an arbitrary axis
						// so the pair doesn't get stuck unresolved.
						dx, dy, dist = 1, 0, 1e-6
					} else {
						continue
					}
				}
				overlap := minDist - dist
				nx, ny := dx/dist, dy/dist
				a.X -= nx * overlap / 2
				a.Y -= ny * overlap / 2
				b.X += nx * overlap / 2
				b.Y += ny * overlap / 2
			}
		}
	}
}

// closestPointOnSegment returns the point on segment [a,b] closest to p,
// used for the bullet continuous-collision-detection sweep.
func closestPointOnSegment(a, b, p shared.Vec2) shared.Vec2 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq < 1e-9 {
		return a
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

// segmentHitsCircle reports whether any point on segment [a,b] lies within
// radius r of center c — the swept test that keeps a fast bullet from
// tunneling through a player between ticks.
func segmentHitsCircle(a, b, c shared.Vec2, r float32) bool {
	closest := closestPointOnSegment(a, b, c)
	return closest.Sub(c).Length() <= r
}
