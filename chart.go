package astrochart

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Axis cusp indexes.
const (
	Ascendant  = 0
	ImumCoeli  = 3
	Descendant = 6
	Midheaven  = 9
)

// Validate checks the chart has 12 finite cusps and well formed planets.
func (d Data) Validate() error {
	if len(d.Cusps) != 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidCuspCount, len(d.Cusps))
	}
	for i, c := range d.Cusps {
		if err := ValidateAngle(c); err != nil {
			return fmt.Errorf("cusp %d: %w", i+1, err)
		}
	}
	return validatePoints(d.Planets)
}

// normalized returns a copy with every angle reduced to [0, 360).
func (d Data) normalized() Data {
	out := Data{
		Planets: make([]Point, len(d.Planets)),
		Cusps:   make([]float64, len(d.Cusps)),
	}
	for i, p := range d.Planets {
		p.Angle = Normalize(p.Angle)
		out.Planets[i] = p
	}
	for i, c := range d.Cusps {
		out.Cusps[i] = Normalize(c)
	}
	return out
}

// Radix is a natal wheel ready to draw.
type Radix struct {
	Data      Data
	Config    Config
	Shift     float64 // rotation putting the Ascendant on the left
	Placement Placement
	Aspects   []AspectMatch
	Passes    int // overlap resolver passes
}

// ChartOption configures chart assembly.
type ChartOption func(*chartOptions)

type chartOptions struct {
	log zerolog.Logger
}

// WithChartLogger logs chart assembly at debug level.
func WithChartLogger(l zerolog.Logger) ChartOption {
	return func(o *chartOptions) {
		o.log = l
	}
}

// NewRadix validates data and computes the layout and aspects of a radix
// chart. Self aspects and mirrored duplicates are dropped.
func NewRadix(data Data, cfg Config, opts ...ChartOption) (*Radix, error) {
	o := chartOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	data = data.normalized()

	placement, passes, err := LayoutPasses(data.Planets, cfg.PointCollisionRadius, cfg.PointRadius(),
		WithMaxPasses(cfg.MaxLayoutPasses), WithLayoutLogger(o.log))
	if err != nil {
		return nil, fmt.Errorf("radix layout: %w", err)
	}

	aspects := DedupeMirrors(ExcludeSelfMatches(Match(data.Planets, data.Planets, cfg.Aspects)))

	o.log.Debug().
		Int("planets", len(data.Planets)).
		Int("aspects", len(aspects)).
		Float64("ascendant", data.Cusps[Ascendant]).
		Msg("radix assembled")

	return &Radix{
		Data:      data,
		Config:    cfg,
		Shift:     Normalize(data.Cusps[Ascendant] + 180),
		Placement: placement,
		Aspects:   aspects,
		Passes:    passes,
	}, nil
}

// Transit is a transit ring drawn around a shrunken radix wheel.
type Transit struct {
	Radix *Radix
	Data  Data

	// RadixPlacement is the radix layout redone at the shrunken radius.
	RadixPlacement Placement
	Placement      Placement
	Aspects        []AspectMatch
	Passes         int
}

// Transit computes a transit chart over r. Aspects run from every transit
// point to every radix point without filtering.
func (r *Radix) Transit(data Data, opts ...ChartOption) (*Transit, error) {
	o := chartOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	data = data.normalized()
	cfg := r.Config
	radius := cfg.Radius() * transitScale

	radixPlacement, radixPasses, err := LayoutPasses(r.Data.Planets, cfg.PointCollisionRadius, radius*pointRingRatio,
		WithMaxPasses(cfg.MaxLayoutPasses), WithLayoutLogger(o.log))
	if err != nil {
		return nil, fmt.Errorf("radix layout: %w", err)
	}
	placement, passes, err := LayoutPasses(data.Planets, cfg.PointCollisionRadius, radius*transitRingRatio,
		WithMaxPasses(cfg.MaxLayoutPasses), WithLayoutLogger(o.log))
	if err != nil {
		return nil, fmt.Errorf("transit layout: %w", err)
	}

	aspects := Match(data.Planets, r.Data.Planets, cfg.Aspects)

	o.log.Debug().
		Int("planets", len(data.Planets)).
		Int("aspects", len(aspects)).
		Msg("transit assembled")

	return &Transit{
		Radix:          r,
		Data:           data,
		RadixPlacement: radixPlacement,
		Placement:      placement,
		Aspects:        aspects,
		Passes:         radixPasses + passes,
	}, nil
}
