package astrochart

import (
	"errors"
	"math"
	"testing"
)

func testRadixData() Data {
	return Data{
		Planets: []Point{
			{Name: "Sun", Angle: 10.5},
			{Name: "Moon", Angle: 12},
			{Name: "Mercury", Angle: 11.2},
			{Name: "Venus", Angle: 45},
			{Name: "Mars", Angle: 200.3},
			{Name: "Jupiter", Angle: 270},
			{Name: "Saturn", Angle: 310.7, Retrograde: true},
			{Name: "Uranus", Angle: 300},
			{Name: "Neptune", Angle: 330},
			{Name: "Pluto", Angle: 250},
		},
		Cusps: []float64{296, 350, 30, 56, 75, 94, 116, 170, 210, 236, 255, 274},
	}
}

func testTransitData() Data {
	return Data{
		Planets: []Point{
			{Name: "Sun", Angle: 190},
			{Name: "Moon", Angle: 91},
			{Name: "Mars", Angle: 20.5},
		},
		Cusps: []float64{0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330},
	}
}

func TestDataValidate(t *testing.T) {
	if err := testRadixData().Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Data)
		want   error
	}{
		{"11 cusps", func(d *Data) { d.Cusps = d.Cusps[:11] }, ErrInvalidCuspCount},
		{"13 cusps", func(d *Data) { d.Cusps = append(d.Cusps, 1) }, ErrInvalidCuspCount},
		{"no cusps", func(d *Data) { d.Cusps = nil }, ErrInvalidCuspCount},
		{"nan cusp", func(d *Data) { d.Cusps[4] = math.NaN() }, ErrInvalidAngle},
		{"inf planet", func(d *Data) { d.Planets[1].Angle = math.Inf(-1) }, ErrInvalidAngle},
		{"duplicate planet", func(d *Data) { d.Planets[1].Name = "Sun" }, ErrDuplicatePoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testRadixData()
			tt.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRadix(t *testing.T) {
	cfg := DefaultConfig()
	r, err := NewRadix(testRadixData(), cfg)
	if err != nil {
		t.Fatalf("NewRadix error: %v", err)
	}

	if r.Shift != 116 {
		t.Errorf("shift = %g, want 116", r.Shift)
	}
	// Ascendant lands on the left of the wheel.
	p := PointOnCircle(0, 0, 1, ToRadian(r.Data.Cusps[Ascendant], r.Shift))
	if math.Abs(p.X+1) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("ascendant at (%g,%g), want (-1,0)", p.X, p.Y)
	}

	if len(r.Placement) != len(r.Data.Planets) {
		t.Fatalf("placed %d planets, want %d", len(r.Placement), len(r.Data.Planets))
	}
	if r.Passes == 0 {
		t.Errorf("expected the Sun/Moon/Mercury cluster to need passes")
	}
	assertSeparated(t, r.Placement, cfg.PointCollisionRadius, cfg.PointRadius())

	for _, m := range r.Aspects {
		if m.From.Name == m.To.Name {
			t.Errorf("self aspect %s", m.From.Name)
		}
	}
	seen := map[[3]string]bool{}
	for _, m := range r.Aspects {
		if seen[[3]string{m.Aspect.Name, m.To.Name, m.From.Name}] {
			t.Errorf("mirrored aspect %s %s-%s", m.Aspect.Name, m.From.Name, m.To.Name)
		}
		seen[[3]string{m.Aspect.Name, m.From.Name, m.To.Name}] = true
	}
	// Sun 10.5, Moon 12, Mercury 11.2 are conjunct.
	if len(r.Aspects) < 3 {
		t.Errorf("expected at least 3 aspects, got %d", len(r.Aspects))
	}
}

func TestNewRadixNormalizes(t *testing.T) {
	d := testRadixData()
	d.Planets[0].Angle = 370.5
	d.Cusps[0] = -64
	r, err := NewRadix(d, DefaultConfig())
	if err != nil {
		t.Fatalf("NewRadix error: %v", err)
	}
	if r.Data.Planets[0].Angle != 10.5 {
		t.Errorf("Sun angle = %g, want 10.5", r.Data.Planets[0].Angle)
	}
	if r.Shift != 116 {
		t.Errorf("shift = %g, want 116", r.Shift)
	}
	if d.Planets[0].Angle != 370.5 {
		t.Errorf("input mutated: %g", d.Planets[0].Angle)
	}
}

func TestNewRadixErrors(t *testing.T) {
	d := testRadixData()
	d.Cusps = d.Cusps[:6]
	if _, err := NewRadix(d, DefaultConfig()); !errors.Is(err, ErrInvalidCuspCount) {
		t.Errorf("expected ErrInvalidCuspCount, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.PointCollisionRadius = 200
	cfg.MaxLayoutPasses = 50
	if _, err := NewRadix(testRadixData(), cfg); !errors.Is(err, ErrOverlapImpossible) {
		t.Errorf("expected ErrOverlapImpossible, got %v", err)
	}
}

func TestTransit(t *testing.T) {
	cfg := DefaultConfig()
	r, err := NewRadix(testRadixData(), cfg)
	if err != nil {
		t.Fatalf("NewRadix error: %v", err)
	}
	tr, err := r.Transit(testTransitData())
	if err != nil {
		t.Fatalf("Transit error: %v", err)
	}

	if len(tr.Placement) != 3 {
		t.Errorf("placed %d transit planets, want 3", len(tr.Placement))
	}
	if len(tr.RadixPlacement) != len(r.Data.Planets) {
		t.Errorf("placed %d radix planets, want %d", len(tr.RadixPlacement), len(r.Data.Planets))
	}
	assertSeparated(t, tr.RadixPlacement, cfg.PointCollisionRadius, cfg.Radius()*transitScale*pointRingRatio)

	want := Match(tr.Data.Planets, r.Data.Planets, cfg.Aspects)
	if len(tr.Aspects) != len(want) {
		t.Fatalf("transit aspects = %d, want %d", len(tr.Aspects), len(want))
	}
	// Transit Sun 190 opposes radix Sun 10.5 and is kept even though the
	// names match.
	found := false
	for _, m := range tr.Aspects {
		if m.From.Name == "Sun" && m.To.Name == "Sun" && m.Aspect.Name == "Opposition" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Sun-Sun opposition among %+v", tr.Aspects)
	}
}

func TestTransitInvalid(t *testing.T) {
	r, err := NewRadix(testRadixData(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewRadix error: %v", err)
	}
	d := testTransitData()
	d.Cusps = d.Cusps[:11]
	if _, err := r.Transit(d); !errors.Is(err, ErrInvalidCuspCount) {
		t.Errorf("expected ErrInvalidCuspCount, got %v", err)
	}
}
