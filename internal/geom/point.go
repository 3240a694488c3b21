// Package geom holds the 2D map-space value types shared by the simulation.
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Point is a real-valued coordinate in map space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both components by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Len is the euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist is the straight-line distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rotate turns p, as a vector, by angle radians counter-clockwise.
func (p Point) Rotate(angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// Clamp limits p to the rectangle [minX,maxX]x[minY,maxY].
func (p Point) Clamp(minX, minY, maxX, maxY float64) Point {
	return Point{
		X: math.Max(minX, math.Min(maxX, p.X)),
		Y: math.Max(minY, math.Min(maxY, p.Y)),
	}
}

// Orb converts p to an orb point for geometry and GeoJSON helpers.
func (p Point) Orb() orb.Point { return orb.Point{p.X, p.Y} }

// FromOrb converts an orb point back to a map-space Point.
func FromOrb(o orb.Point) Point { return Point{X: o[0], Y: o[1]} }
