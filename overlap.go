package astrochart

import (
	"fmt"
	"sort"

	"github.com/jbeda/geom"
	"github.com/rs/zerolog"
)

// DefaultMaxLayoutPasses bounds the number of collision fixes Layout
// attempts before giving up.
const DefaultMaxLayoutPasses = 5000

const (
	sectorWidth = 10
	sectorCount = 360 / sectorWidth
	layoutStep  = 1.0 // degrees each colliding point is pushed per pass
)

// LayoutOption configures Layout.
type LayoutOption func(*layoutConfig)

type layoutConfig struct {
	maxPasses int
	log       zerolog.Logger
}

// WithMaxPasses sets the pass bound. Values <= 0 keep the default.
func WithMaxPasses(n int) LayoutOption {
	return func(c *layoutConfig) {
		if n > 0 {
			c.maxPasses = n
		}
	}
}

// WithLayoutLogger logs resolver progress at debug level.
func WithLayoutLogger(l zerolog.Logger) LayoutOption {
	return func(c *layoutConfig) {
		c.log = l
	}
}

// Layout spreads points along a circle of circleRadius pixels so that no
// two glyphs of collisionRadius pixels overlap. It returns the display
// angle of every point.
func Layout(points []Point, collisionRadius, circleRadius float64, opts ...LayoutOption) (Placement, error) {
	placement, _, err := LayoutPasses(points, collisionRadius, circleRadius, opts...)
	return placement, err
}

// LayoutPasses is Layout that also returns how many collision fixes were
// needed.
func LayoutPasses(points []Point, collisionRadius, circleRadius float64, opts ...LayoutOption) (Placement, int, error) {
	cfg := layoutConfig{
		maxPasses: DefaultMaxLayoutPasses,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateRadius("collision radius", collisionRadius); err != nil {
		return nil, 0, err
	}
	if err := validateRadius("circle radius", circleRadius); err != nil {
		return nil, 0, err
	}
	if err := validatePoints(points); err != nil {
		return nil, 0, err
	}
	if len(points) == 0 {
		return Placement{}, 0, nil
	}

	minDist := 2 * collisionRadius
	position := func(angle float64) geom.Coord {
		return PointOnCircle(0, 0, circleRadius, ToRadian(angle, 0))
	}

	if !anyCollision(points, position, minDist) {
		placement := make(Placement, len(points))
		for _, p := range points {
			placement[p.Name] = Normalize(p.Angle)
		}
		return placement, 0, nil
	}

	origin, err := freeSector(points)
	if err != nil {
		return nil, 0, err
	}

	type slot struct {
		name  string
		angle float64 // display angle, adjusted in place
		key   float64 // angle relative to origin, fixes processing order
	}
	slots := make([]slot, len(points))
	for i, p := range points {
		a := Normalize(p.Angle)
		key := a
		if key < origin {
			key += 360
		}
		slots[i] = slot{name: p.Name, angle: a, key: key}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].key < slots[j].key
	})

	passes := 0
	for {
		moved := false
	scan:
		for i := range slots {
			pi := position(slots[i].angle)
			for j := 0; j < i; j++ {
				if pi.DistanceFrom(position(slots[j].angle)) < minDist {
					slots[i].angle += layoutStep
					slots[j].angle -= layoutStep
					moved = true
					break scan
				}
			}
		}
		if !moved {
			break
		}
		passes++
		if passes > cfg.maxPasses {
			cfg.log.Debug().
				Int("points", len(points)).
				Int("passes", passes).
				Msg("layout did not converge")
			return nil, passes, fmt.Errorf("%w: %d points still collide after %d passes",
				ErrOverlapImpossible, len(points), cfg.maxPasses)
		}
	}

	placement := make(Placement, len(slots))
	for _, s := range slots {
		placement[s.name] = Normalize(s.angle)
	}

	cfg.log.Debug().
		Int("points", len(points)).
		Int("passes", passes).
		Float64("origin", origin).
		Msg("layout resolved")

	return placement, passes, nil
}

// anyCollision reports whether two points project closer than minDist.
func anyCollision(points []Point, position func(float64) geom.Coord, minDist float64) bool {
	for i := range points {
		pi := position(Normalize(points[i].Angle))
		for j := 0; j < i; j++ {
			if pi.DistanceFrom(position(Normalize(points[j].Angle))) < minDist {
				return true
			}
		}
	}
	return false
}

// freeSector returns the start of the first 10° sector holding no point.
// Processing points from an empty sector keeps neighbours across 0°/360°
// adjacent in the sort order.
func freeSector(points []Point) (float64, error) {
	var counts [sectorCount]int
	for _, p := range points {
		idx := int(Normalize(p.Angle) / sectorWidth)
		if idx >= sectorCount {
			idx = sectorCount - 1
		}
		counts[idx]++
	}
	for i, n := range counts {
		if n == 0 {
			return float64(i * sectorWidth), nil
		}
	}
	return 0, fmt.Errorf("%w: %d points occupy all %d sectors", ErrNoFreeSector, len(points), sectorCount)
}
