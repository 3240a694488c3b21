package herd

import (
	"fmt"
	"math/rand"

	"moove-sim/internal/geofence"
	"moove-sim/internal/geom"
)

// Engine owns the herd and advances it one tick at a time. It is not safe for concurrent use.
type Engine struct {
	params  Params
	fence   geofence.Polygon
	rand    *rand.Rand
	cows    []Cow
	target  geom.Point
	history *History
}

// NewEngine spawns a herd inside fence. The migration target starts at 70% of the map extent.
func NewEngine(p Params, fence geofence.Polygon, rng *rand.Rand) *Engine {
	e := &Engine{
		params:  p,
		fence:   fence,
		rand:    rng,
		target:  geom.Point{X: p.Width * 0.7, Y: p.Height * 0.7},
		history: NewHistory(p.HistorySize),
	}
	e.cows = Spawn(p, rng)
	for i := range e.cows {
		e.cows[i].Status = e.classify(e.cows[i], Centroid(e.cows))
	}
	return e
}

// Spawn creates the initial herd: leaders first, then loners, then followers, placed uniformly
// inside the spawn inset.
func Spawn(p Params, rng *rand.Rand) []Cow {
	cows := make([]Cow, p.Count)
	for i := range cows {
		b := BehaviorFollower
		switch {
		case i < p.Leaders:
			b = BehaviorLeader
		case i < p.Leaders+p.Loners:
			b = BehaviorLoner
		}
		cows[i] = Cow{
			ID:       fmt.Sprintf("cow-%d", i+1),
			Behavior: b,
			Status:   StatusGrazing,
			Position: geom.Point{
				X: rng.Float64()*(p.Width-2*p.SpawnInset) + p.SpawnInset,
				Y: rng.Float64()*(p.Height-2*p.SpawnInset) + p.SpawnInset,
			},
		}
	}
	return cows
}

// Cows returns a copy of the current herd.
func (e *Engine) Cows() []Cow {
	out := make([]Cow, len(e.cows))
	copy(out, e.cows)
	return out
}

// SetCows replaces the herd, e.g. to place animals at known positions.
func (e *Engine) SetCows(cows []Cow) {
	e.cows = append(e.cows[:0:0], cows...)
}

// Target is the shared migration point.
func (e *Engine) Target() geom.Point { return e.target }

// SetTarget moves the migration point.
func (e *Engine) SetTarget(p geom.Point) { e.target = p }

// History is the rolling cohesion history.
func (e *Engine) History() *History { return e.history }

// Fence is the containment polygon.
func (e *Engine) Fence() geofence.Polygon { return e.fence }

// Step moves every animal once, reclassifies it, records cohesion and occasionally relocates
// the migration target. All animals see the same pre-move snapshot.
func (e *Engine) Step(drone geom.Point) Metrics {
	prev := e.Cows()
	center := Centroid(prev)
	avg := AveragePairwiseDistance(prev)

	var leaders []geom.Point
	for _, c := range prev {
		if c.Behavior == BehaviorLeader {
			leaders = append(leaders, c.Position)
		}
	}

	for i, c := range prev {
		next := c
		next.Position = e.force(c, i, prev, center, leaders, drone)
		next.Status = e.classify(next, center)
		e.cows[i] = next
	}
	e.history.Push(avg)

	m := Metrics{
		Centroid:        center,
		AverageDistance: avg,
		Counts:          CountStatuses(e.cows),
		Label:           Label(e.cows),
		Target:          e.target,
	}
	if e.rand.Float64() < e.params.MigrationChance {
		in := e.params.MigrationInset
		e.target = geom.Point{
			X: e.rand.Float64()*(e.params.Width-2*in) + in,
			Y: e.rand.Float64()*(e.params.Height-2*in) + in,
		}
		m.Migrated = true
	}
	return m
}

func (e *Engine) force(c Cow, idx int, herd []Cow, center geom.Point, leaders []geom.Point, drone geom.Point) geom.Point {
	p := &e.params
	w, target := defaultWeights, e.target
	switch c.Behavior {
	case BehaviorLeader:
		w = leaderWeights
	case BehaviorFollower:
		if l, ok := nearest(c.Position, leaders); ok {
			w, target = followerWeights, l
		}
	case BehaviorLoner:
		w = lonerWeights
	}

	delta := target.Sub(c.Position).Scale(w.target)
	delta = delta.Add(center.Sub(c.Position).Scale(w.cohesion))
	wander := geom.Point{X: e.rand.Float64() - 0.5, Y: e.rand.Float64() - 0.5}
	delta = delta.Add(wander.Scale(w.wander))
	delta = delta.Add(push(c.Position, drone, p.RepelRadius, p.RepelStrength))
	for j, o := range herd {
		if j == idx {
			continue
		}
		delta = delta.Add(push(c.Position, o.Position, p.SeparationRadius, p.SeparationWeight))
	}
	return c.Position.Add(delta).Clamp(0, 0, p.Width, p.Height)
}

// push is a force away from src, falling linearly from weight at distance 0 to nothing at
// radius. Coincident points exert no force.
func push(pos, src geom.Point, radius, weight float64) geom.Point {
	off := pos.Sub(src)
	d := off.Len()
	if d <= 0 || d >= radius {
		return geom.Point{}
	}
	return off.Scale((radius - d) / radius * weight / d)
}

func nearest(p geom.Point, candidates []geom.Point) (geom.Point, bool) {
	if len(candidates) == 0 {
		return geom.Point{}, false
	}
	best, bestDist := candidates[0], p.Dist(candidates[0])
	for _, c := range candidates[1:] {
		if d := p.Dist(c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

func (e *Engine) classify(c Cow, center geom.Point) Status {
	if !geofence.Contains(c.Position, e.fence) {
		return StatusEscaped
	}
	limit := e.params.IsolationDistance
	if c.Behavior == BehaviorLoner {
		limit = e.params.LonerIsolationDistance
	}
	if c.Position.Dist(center) > limit {
		return StatusIsolated
	}
	return StatusGrazing
}
