package astrochart

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidAngle      = errors.New("astrochart: angle is not a finite number")
	ErrInvalidRadius     = errors.New("astrochart: radius must be a positive finite number")
	ErrInvalidCuspCount  = errors.New("astrochart: chart needs exactly 12 cusps")
	ErrDuplicatePoint    = errors.New("astrochart: duplicate or empty point name")
	ErrNoFreeSector      = errors.New("astrochart: no free 10° sector to anchor the layout")
	ErrOverlapImpossible = errors.New("astrochart: points cannot be placed without overlap")
)

// ValidateAngle reports ErrInvalidAngle for NaN and ±Inf.
func ValidateAngle(angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAngle, angle)
	}
	return nil
}

func validateRadius(name string, r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: %s=%v", ErrInvalidRadius, name, r)
	}
	return nil
}

// validatePoints checks angles are finite and names are unique.
func validatePoints(points []Point) error {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p.Name == "" {
			return fmt.Errorf("%w: point at %v has no name", ErrDuplicatePoint, p.Angle)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicatePoint, p.Name)
		}
		seen[p.Name] = struct{}{}
		if err := ValidateAngle(p.Angle); err != nil {
			return fmt.Errorf("point %q: %w", p.Name, err)
		}
	}
	return nil
}
