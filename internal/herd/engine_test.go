package herd

import (
	"math"
	"math/rand"
	"testing"

	"moove-sim/internal/geofence"
	"moove-sim/internal/geom"
)

var field = geofence.Polygon{{X: 0, Y: 0}, {X: 800, Y: 0}, {X: 800, Y: 500}, {X: 0, Y: 500}}

func TestSpawnComposition(t *testing.T) {
	p := DefaultParams()
	cows := Spawn(p, rand.New(rand.NewSource(1)))
	if len(cows) != 30 {
		t.Fatalf("expected 30 cows, got %d", len(cows))
	}
	var leaders, loners, followers int
	seen := map[string]bool{}
	for _, c := range cows {
		if seen[c.ID] {
			t.Fatalf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
		switch c.Behavior {
		case BehaviorLeader:
			leaders++
		case BehaviorLoner:
			loners++
		case BehaviorFollower:
			followers++
		}
		if c.Position.X < 100 || c.Position.X > 700 || c.Position.Y < 100 || c.Position.Y > 400 {
			t.Fatalf("cow %s spawned outside inset: %+v", c.ID, c.Position)
		}
	}
	if leaders != 3 || loners != 4 || followers != 23 {
		t.Fatalf("composition %d/%d/%d", leaders, loners, followers)
	}
	if cows[0].ID != "cow-1" || cows[0].Behavior != BehaviorLeader {
		t.Fatalf("unexpected first cow %+v", cows[0])
	}
}

func TestStepKeepsHerdInBounds(t *testing.T) {
	p := DefaultParams()
	e := NewEngine(p, field, rand.New(rand.NewSource(5)))
	// Start some animals on the edges and the drone right on top of them.
	cows := e.Cows()
	cows[0].Position = geom.Point{X: 0, Y: 0}
	cows[1].Position = geom.Point{X: 800, Y: 500}
	cows[2].Position = geom.Point{X: 1, Y: 499}
	e.SetCows(cows)
	drones := []geom.Point{{X: 2, Y: 2}, {X: 798, Y: 498}, {X: 3, Y: 497}, {X: 400, Y: 250}}
	for i := 0; i < 2000; i++ {
		e.Step(drones[i%len(drones)])
		for _, c := range e.Cows() {
			if c.Position.X < 0 || c.Position.X > p.Width || c.Position.Y < 0 || c.Position.Y > p.Height {
				t.Fatalf("tick %d: cow %s out of bounds at %+v", i, c.ID, c.Position)
			}
		}
	}
}

func TestHistoryCappedAtThirty(t *testing.T) {
	e := NewEngine(DefaultParams(), field, rand.New(rand.NewSource(2)))
	var pushed []float64
	for i := 0; i < 45; i++ {
		m := e.Step(geom.Point{X: -1000, Y: -1000})
		pushed = append(pushed, m.AverageDistance)
	}
	h := e.History().Values()
	if len(h) != 30 {
		t.Fatalf("history length %d, want 30", len(h))
	}
	for i, v := range h {
		if v != pushed[15+i] {
			t.Fatalf("history[%d] = %f, want %f", i, v, pushed[15+i])
		}
	}
}

func TestEscapeTakesPrecedence(t *testing.T) {
	fence := geofence.Polygon{{X: 100, Y: 100}, {X: 700, Y: 100}, {X: 700, Y: 400}, {X: 100, Y: 400}}
	p := DefaultParams()
	p.SeparationRadius = 0
	e := NewEngine(p, fence, rand.New(rand.NewSource(1)))
	// Two cows straddling the fence, a few units from the centroid.
	e.SetCows([]Cow{
		{ID: "cow-1", Behavior: BehaviorFollower, Position: geom.Point{X: 95, Y: 250}},
		{ID: "cow-2", Behavior: BehaviorFollower, Position: geom.Point{X: 115, Y: 250}},
	})
	e.Step(geom.Point{X: -1000, Y: -1000})
	cows := e.Cows()
	if cows[0].Status != StatusEscaped {
		t.Fatalf("cow outside the fence classified %s", cows[0].Status)
	}
	if cows[1].Status != StatusGrazing {
		t.Fatalf("cow inside the fence classified %s", cows[1].Status)
	}
	if Label(cows) != LabelEscaped {
		t.Fatalf("label %q", Label(cows))
	}
}

func TestIsolationThresholdByBehavior(t *testing.T) {
	e := NewEngine(DefaultParams(), field, rand.New(rand.NewSource(1)))
	center := geom.Point{X: 400, Y: 250}
	loner := Cow{Behavior: BehaviorLoner, Position: geom.Point{X: 525, Y: 250}}
	follower := Cow{Behavior: BehaviorFollower, Position: geom.Point{X: 525, Y: 250}}
	if got := e.classify(loner, center); got != StatusGrazing {
		t.Fatalf("loner at 125 classified %s", got)
	}
	if got := e.classify(follower, center); got != StatusIsolated {
		t.Fatalf("follower at 125 classified %s", got)
	}
}

func TestSingleCowAverageDistanceIsZero(t *testing.T) {
	p := DefaultParams()
	e := NewEngine(p, field, rand.New(rand.NewSource(1)))
	e.SetCows([]Cow{{ID: "cow-1", Behavior: BehaviorLeader, Position: geom.Point{X: 400, Y: 250}}})
	m := e.Step(geom.Point{X: 0, Y: 0})
	if m.AverageDistance != 0 || math.IsNaN(m.AverageDistance) {
		t.Fatalf("average distance %v", m.AverageDistance)
	}
	if AveragePairwiseDistance(nil) != 0 {
		t.Fatalf("empty herd must average 0")
	}
	empty := NewEngine(p, field, rand.New(rand.NewSource(1)))
	empty.SetCows(nil)
	if m := empty.Step(geom.Point{}); m.AverageDistance != 0 || m.Label != LabelCalm {
		t.Fatalf("empty herd metrics %+v", m)
	}
}

func TestDroneRepelsNearbyCow(t *testing.T) {
	p := DefaultParams()
	e := NewEngine(p, field, rand.New(rand.NewSource(1)))
	e.SetCows([]Cow{{ID: "cow-1", Behavior: BehaviorFollower, Position: geom.Point{X: 400, Y: 250}}})
	e.Step(geom.Point{X: 390, Y: 250})
	// Repulsion at distance 10 is 0.875, far above the wander and attraction terms.
	if x := e.Cows()[0].Position.X; x <= 400.5 {
		t.Fatalf("cow was not pushed away, x = %f", x)
	}
}

func TestEmptyFenceEscapesEveryone(t *testing.T) {
	e := NewEngine(DefaultParams(), nil, rand.New(rand.NewSource(1)))
	m := e.Step(geom.Point{})
	if m.Counts.Escaped != 30 || m.Label != LabelEscaped {
		t.Fatalf("metrics %+v", m)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []Cow {
		e := NewEngine(DefaultParams(), field, rand.New(rand.NewSource(99)))
		for i := 0; i < 100; i++ {
			e.Step(geom.Point{X: 400, Y: 250})
		}
		return e.Cows()
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cow %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMigrationRelocatesTarget(t *testing.T) {
	p := DefaultParams()
	p.MigrationChance = 1
	e := NewEngine(p, field, rand.New(rand.NewSource(4)))
	if e.Target().Dist(geom.Point{X: 560, Y: 350}) > 1e-9 {
		t.Fatalf("initial target %+v", e.Target())
	}
	m := e.Step(geom.Point{})
	if !m.Migrated {
		t.Fatalf("expected migration")
	}
	tg := e.Target()
	if tg.X < 100 || tg.X > 700 || tg.Y < 100 || tg.Y > 400 {
		t.Fatalf("target %+v outside inset", tg)
	}
}

func TestFarthestIsolated(t *testing.T) {
	cows := []Cow{
		{ID: "a", Status: StatusGrazing, Position: geom.Point{X: 0, Y: 0}},
		{ID: "b", Status: StatusIsolated, Position: geom.Point{X: 10, Y: 0}},
		{ID: "c", Status: StatusIsolated, Position: geom.Point{X: 100, Y: 0}},
		{ID: "d", Status: StatusEscaped, Position: geom.Point{X: 30, Y: 0}},
	}
	// Centroid x = 35: b is 25 away, c is 65 away. The escaped cow counts towards the
	// centroid but is never a candidate.
	center := Centroid(cows)
	if math.Abs(center.X-35) > 1e-9 {
		t.Fatalf("centroid %+v", center)
	}
	if db, dc := cows[1].Position.Dist(center), cows[2].Position.Dist(center); math.Abs(db-25) > 1e-9 || math.Abs(dc-65) > 1e-9 {
		t.Fatalf("distances b=%v c=%v", db, dc)
	}
	c, ok := FarthestIsolated(cows)
	if !ok || c.ID != "c" {
		t.Fatalf("FarthestIsolated = %+v, %v", c, ok)
	}

	// A far escaped cow drags the centroid past c, making b the farthest isolated one.
	cows[3].Position = geom.Point{X: 1000, Y: 0}
	if c, ok := FarthestIsolated(cows); !ok || c.ID != "b" {
		t.Fatalf("FarthestIsolated with far escapee = %+v, %v", c, ok)
	}
	if _, ok := FarthestIsolated(cows[:1]); ok {
		t.Fatalf("no isolated cow expected")
	}
}

// withWeights replaces the behaviour weights for the duration of the test.
func withWeights(t *testing.T, def, leader, follower, loner weights) {
	t.Helper()
	saved := [4]weights{defaultWeights, leaderWeights, followerWeights, lonerWeights}
	defaultWeights, leaderWeights, followerWeights, lonerWeights = def, leader, follower, loner
	t.Cleanup(func() {
		defaultWeights, leaderWeights, followerWeights, lonerWeights = saved[0], saved[1], saved[2], saved[3]
	})
}

func calmEngine(t *testing.T, cows []Cow) *Engine {
	t.Helper()
	p := DefaultParams()
	p.MigrationChance = 0
	e := NewEngine(p, field, rand.New(rand.NewSource(11)))
	e.SetCows(cows)
	return e
}

var farDrone = geom.Point{X: -1000, Y: -1000}

func TestFollowerSeeksNearestLeader(t *testing.T) {
	noWander := func(w weights) weights { w.wander = 0; return w }
	withWeights(t, noWander(defaultWeights), noWander(leaderWeights), noWander(followerWeights), noWander(lonerWeights))

	cases := []struct {
		name  string
		cows  []Cow
		wantX float64
		wantY float64
	}{
		{
			// Centroid (333.33, 250); nearest leader at 500.
			// dx = 100*0.0008 + (333.33-400)*0.0002.
			name: "nearest leader",
			cows: []Cow{
				{ID: "f", Behavior: BehaviorFollower, Position: geom.Point{X: 400, Y: 250}},
				{ID: "l1", Behavior: BehaviorLeader, Position: geom.Point{X: 500, Y: 250}},
				{ID: "l2", Behavior: BehaviorLeader, Position: geom.Point{X: 100, Y: 250}},
			},
			wantX: 400 + 100*0.0008 + (1000.0/3-400)*0.0002,
			wantY: 250,
		},
		{
			// Without leaders the migration target (560, 350) pulls at the default weight.
			name: "no leader falls back to migration target",
			cows: []Cow{
				{ID: "f", Behavior: BehaviorFollower, Position: geom.Point{X: 400, Y: 250}},
			},
			wantX: 400 + 160*0.0001,
			wantY: 250 + 100*0.0001,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := calmEngine(t, tc.cows)
			e.Step(farDrone)
			got := e.Cows()[0].Position
			if math.Abs(got.X-tc.wantX) > 1e-9 || math.Abs(got.Y-tc.wantY) > 1e-9 {
				t.Fatalf("follower moved to %+v, want (%v, %v)", got, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestSeparationAccumulates(t *testing.T) {
	zero := weights{}
	withWeights(t, zero, zero, zero, zero)

	at := func(id string, x float64) Cow {
		return Cow{ID: id, Behavior: BehaviorFollower, Position: geom.Point{X: x, Y: 250}}
	}
	cases := []struct {
		name  string
		cows  []Cow
		wantX []float64
	}{
		// 5 apart: (15-5)/15 * 0.3 = 0.2 each way.
		{name: "pair", cows: []Cow{at("a", 400), at("b", 405)}, wantX: []float64{399.8, 405.2}},
		// a is pushed by b (0.2) and c (0.1) with no cap; b is balanced.
		{name: "two neighbours", cows: []Cow{at("a", 400), at("b", 395), at("c", 390)}, wantX: []float64{400.3, 395, 389.7}},
		{name: "outside radius", cows: []Cow{at("a", 400), at("b", 420)}, wantX: []float64{400, 420}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := calmEngine(t, tc.cows)
			e.Step(farDrone)
			for i, c := range e.Cows() {
				if math.Abs(c.Position.X-tc.wantX[i]) > 1e-9 || c.Position.Y != 250 {
					t.Fatalf("cow %s at %+v, want x=%v", c.ID, c.Position, tc.wantX[i])
				}
			}
		})
	}
}

func TestLabelAndColor(t *testing.T) {
	if Label([]Cow{{Status: StatusGrazing}, {Status: StatusIsolated}}) != LabelIsolated {
		t.Fatalf("expected isolated label")
	}
	if Label([]Cow{{Status: StatusGrazing}}) != LabelCalm {
		t.Fatalf("expected calm label")
	}
	if StatusEscaped.Color() != "red" || StatusIsolated.Color() != "yellow" || StatusGrazing.Color() != "green" {
		t.Fatalf("unexpected colours")
	}
}
