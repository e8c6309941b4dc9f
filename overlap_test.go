package astrochart

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
)

// assertSeparated fails if any two placed points are closer than
// 2*collision on a circle of the given radius.
func assertSeparated(t *testing.T, placement Placement, collision, radius float64) {
	t.Helper()
	names := make([]string, 0, len(placement))
	for name := range placement {
		names = append(names, name)
	}
	for i := 0; i < len(names); i++ {
		a := PointOnCircle(0, 0, radius, ToRadian(placement[names[i]], 0))
		for j := i + 1; j < len(names); j++ {
			b := PointOnCircle(0, 0, radius, ToRadian(placement[names[j]], 0))
			if d := a.DistanceFrom(b); d < 2*collision {
				t.Errorf("%s (%.3f) and %s (%.3f) are %.3f apart, want >= %.3f",
					names[i], placement[names[i]], names[j], placement[names[j]], d, 2*collision)
			}
		}
	}
}

func TestLayoutEmpty(t *testing.T) {
	placement, err := Layout(nil, 10, 200)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(placement) != 0 {
		t.Fatalf("expected empty placement, got %v", placement)
	}
}

func TestLayoutNoCollision(t *testing.T) {
	points := []Point{{Name: "Sun", Angle: 10}, {Name: "Moon", Angle: 100}, {Name: "Mars", Angle: -20}}
	placement, passes, err := LayoutPasses(points, 10, 200)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if passes != 0 {
		t.Errorf("passes = %d, want 0", passes)
	}
	want := map[string]float64{"Sun": 10, "Moon": 100, "Mars": 340}
	for name, angle := range want {
		if got := placement[name]; math.Abs(got-angle) > 1e-9 {
			t.Errorf("%s placed at %g, want %g", name, got, angle)
		}
	}
}

func TestLayoutSplitsIdenticalPoints(t *testing.T) {
	points := []Point{{Name: "Sun", Angle: 120}, {Name: "Moon", Angle: 120}}
	placement, err := Layout(points, 10, 200)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	assertSeparated(t, placement, 10, 200)
	// First in sort order is pushed back, the second forward.
	if !(placement["Sun"] < 120 && placement["Moon"] > 120) {
		t.Errorf("expected Sun before 120 and Moon after, got Sun=%g Moon=%g", placement["Sun"], placement["Moon"])
	}
	if math.Abs((placement["Sun"]+placement["Moon"])/2-120) > 1e-9 {
		t.Errorf("pair should stay centered on 120, got Sun=%g Moon=%g", placement["Sun"], placement["Moon"])
	}
}

func TestLayoutAcrossSeam(t *testing.T) {
	points := []Point{
		{Name: "A", Angle: 358},
		{Name: "B", Angle: 359},
		{Name: "C", Angle: 0},
		{Name: "D", Angle: 1},
	}
	placement, err := Layout(points, 10, 200)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	assertSeparated(t, placement, 10, 200)
	for name, a := range placement {
		if a < 0 || a >= 360 {
			t.Errorf("%s placed at %g, outside [0,360)", name, a)
		}
	}
	// Order along the circle survives the seam: A, B, C, D.
	order := []string{"A", "B", "C", "D"}
	for i := 1; i < len(order); i++ {
		step := Normalize(placement[order[i]] - placement[order[i-1]])
		if step <= 0 || step >= 180 {
			t.Errorf("%s -> %s step %g, want a small forward step", order[i-1], order[i], step)
		}
	}
}

func TestLayoutInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		points    []Point
		collision float64
		radius    float64
		want      error
	}{
		{"nan angle", []Point{{Name: "Sun", Angle: math.NaN()}}, 10, 200, ErrInvalidAngle},
		{"inf angle", []Point{{Name: "Sun", Angle: math.Inf(1)}}, 10, 200, ErrInvalidAngle},
		{"duplicate name", []Point{{Name: "Sun", Angle: 1}, {Name: "Sun", Angle: 90}}, 10, 200, ErrDuplicatePoint},
		{"empty name", []Point{{Angle: 1}}, 10, 200, ErrDuplicatePoint},
		{"zero collision", []Point{{Name: "Sun", Angle: 1}}, 0, 200, ErrInvalidRadius},
		{"negative radius", []Point{{Name: "Sun", Angle: 1}}, 10, -1, ErrInvalidRadius},
		{"nan radius", []Point{{Name: "Sun", Angle: 1}}, 10, math.NaN(), ErrInvalidRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Layout(tt.points, tt.collision, tt.radius)
			if !errors.Is(err, tt.want) {
				t.Errorf("Layout error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLayoutNoFreeSector(t *testing.T) {
	points := make([]Point, 36)
	for i := range points {
		points[i] = Point{Name: fmt.Sprintf("P%d", i), Angle: float64(i*10) + 5}
	}
	points = append(points, Point{Name: "Crowded", Angle: 5.1})
	_, err := Layout(points, 1, 500)
	if !errors.Is(err, ErrNoFreeSector) {
		t.Fatalf("expected ErrNoFreeSector, got %v", err)
	}
}

func TestLayoutFullWheelWithoutCollisions(t *testing.T) {
	points := make([]Point, 36)
	for i := range points {
		points[i] = Point{Name: fmt.Sprintf("P%d", i), Angle: float64(i*10) + 5}
	}
	placement, passes, err := LayoutPasses(points, 1, 500)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if passes != 0 {
		t.Errorf("passes = %d, want 0", passes)
	}
	for _, p := range points {
		if placement[p.Name] != p.Angle {
			t.Errorf("%s moved from %g to %g", p.Name, p.Angle, placement[p.Name])
		}
	}
}

func TestLayoutOverlapImpossible(t *testing.T) {
	// 30 glyphs of diameter 40 cannot fit on a circle of radius 50.
	points := make([]Point, 30)
	for i := range points {
		points[i] = Point{Name: fmt.Sprintf("P%d", i), Angle: float64(i) * 0.5}
	}
	_, passes, err := LayoutPasses(points, 20, 50, WithMaxPasses(200))
	if !errors.Is(err, ErrOverlapImpossible) {
		t.Fatalf("expected ErrOverlapImpossible, got %v", err)
	}
	if passes != 201 {
		t.Errorf("passes = %d, want 201", passes)
	}
}

func TestLayoutFixedPoint(t *testing.T) {
	points := []Point{
		{Name: "Sun", Angle: 10.5},
		{Name: "Moon", Angle: 12},
		{Name: "Mercury", Angle: 11.2},
		{Name: "Venus", Angle: 14},
		{Name: "Mars", Angle: 200},
	}
	first, err := Layout(points, 12, 245)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	again := make([]Point, 0, len(points))
	for _, p := range points {
		again = append(again, Point{Name: p.Name, Angle: first[p.Name]})
	}
	second, passes, err := LayoutPasses(again, 12, 245)
	if err != nil {
		t.Fatalf("second Layout error: %v", err)
	}
	if passes != 0 {
		t.Errorf("second layout needed %d passes, want 0", passes)
	}
	for name, a := range first {
		if math.Abs(second[name]-a) > 1e-9 {
			t.Errorf("%s moved from %g to %g", name, a, second[name])
		}
	}
}

// A resolved placement may fill the last empty sector; laying it out again
// must still leave it alone.
func TestLayoutFixedPointFullWheel(t *testing.T) {
	points := make([]Point, 0, 36)
	for i := 0; i < 35; i++ {
		points = append(points, Point{Name: fmt.Sprintf("P%d", i), Angle: float64(i*10) + 5})
	}
	points = append(points, Point{Name: "X", Angle: 346})

	first, err := Layout(points, 33, 500)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	again := make([]Point, 0, len(points))
	for _, p := range points {
		again = append(again, Point{Name: p.Name, Angle: first[p.Name]})
	}
	second, passes, err := LayoutPasses(again, 33, 500)
	if err != nil {
		t.Fatalf("second Layout error: %v", err)
	}
	if passes != 0 {
		t.Errorf("second layout needed %d passes, want 0", passes)
	}
	for name, a := range first {
		if second[name] != a {
			t.Errorf("%s moved from %g to %g", name, a, second[name])
		}
	}
}

func TestLayoutDeterministic(t *testing.T) {
	points := []Point{
		{Name: "A", Angle: 50}, {Name: "B", Angle: 50}, {Name: "C", Angle: 51}, {Name: "D", Angle: 49},
	}
	first, err := Layout(points, 10, 200)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := Layout(points, 10, 200)
		if err != nil {
			t.Fatalf("Layout error: %v", err)
		}
		for name, a := range first {
			if next[name] != a {
				t.Fatalf("run %d: %s at %g, first run %g", i, name, next[name], a)
			}
		}
	}
}

func TestLayoutRandomClusters(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const collision, radius = 10.0, 250.0
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(9)
		center := rng.Float64() * 360
		points := make([]Point, n)
		for i := range points {
			points[i] = Point{
				Name:  fmt.Sprintf("P%d", i),
				Angle: center + rng.Float64()*20 - 10,
			}
		}
		placement, err := Layout(points, collision, radius)
		if err != nil {
			t.Fatalf("trial %d (%v): Layout error: %v", trial, points, err)
		}
		if len(placement) != n {
			t.Fatalf("trial %d: %d placements, want %d", trial, len(placement), n)
		}
		assertSeparated(t, placement, collision, radius)
	}
}
