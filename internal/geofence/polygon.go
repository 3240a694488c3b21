// Package geofence decides whether a map position lies inside the pasture boundary.
package geofence

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"moove-sim/internal/geom"
)

// ErrMalformedPath is returned when a path description cannot be fully turned into vertices.
var ErrMalformedPath = errors.New("geofence: malformed path")

// Polygon is an ordered, implicitly closed vertex list.
type Polygon []geom.Point

// Contains reports whether p lies inside poly using the even-odd rule. Points exactly on an
// edge may land on either side. An empty polygon contains nothing.
func Contains(p geom.Point, poly Polygon) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		// Horizontal edges never straddle y, so the division below is never by zero.
		if (vi.Y > p.Y) == (vj.Y > p.Y) {
			continue
		}
		if p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// ParsePath turns an SVG-like path description into vertices. Command letters and commas
// are treated as separators and the remaining numbers are paired up, so curve control points
// become vertices too. On malformed input the vertices parsed so far are returned together
// with an error wrapping ErrMalformedPath.
func ParsePath(d string) (Polygon, error) {
	fields := strings.FieldsFunc(d, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r) || (unicode.IsLetter(r) && r != 'e' && r != 'E')
	})
	poly := make(Polygon, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return poly, fmt.Errorf("%w: vertex %d: %v", ErrMalformedPath, len(poly), err)
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return poly, fmt.Errorf("%w: vertex %d: %v", ErrMalformedPath, len(poly), err)
		}
		poly = append(poly, geom.Point{X: x, Y: y})
	}
	if len(fields)%2 != 0 {
		return poly, fmt.Errorf("%w: odd number of coordinates (%d)", ErrMalformedPath, len(fields))
	}
	return poly, nil
}

// Ring returns the polygon as a closed orb ring.
func (p Polygon) Ring() orb.Ring {
	r := make(orb.Ring, 0, len(p)+1)
	for _, v := range p {
		r = append(r, v.Orb())
	}
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// Area is the enclosed planar area.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	_, a := planar.CentroidArea(p.Ring())
	return math.Abs(a)
}

// Centroid is the area-weighted center of the polygon.
func (p Polygon) Centroid() geom.Point {
	if len(p) == 0 {
		return geom.Point{}
	}
	c, _ := planar.CentroidArea(p.Ring())
	return geom.FromOrb(c)
}

// Bound returns the axis-aligned bounding box as min and max corners.
func (p Polygon) Bound() (min, max geom.Point) {
	if len(p) == 0 {
		return geom.Point{}, geom.Point{}
	}
	b := p.Ring().Bound()
	return geom.FromOrb(b.Min), geom.FromOrb(b.Max)
}

// Feature renders the polygon as a GeoJSON feature in map coordinates.
func (p Polygon) Feature(id, name string) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{p.Ring()})
	f.ID = id
	f.Properties["name"] = name
	f.Properties["kind"] = "pasture"
	return f
}
