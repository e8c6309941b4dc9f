package astrochart

import "math"

// Orb returns the signed deviation of the separation between from and to
// from the exact aspect angle, rounded to 2 decimals.
//
// The sign is positive when from is ahead of to within the short arc.
// When the short arc crosses 0°/360° the sign is taken from the
// deviation alone. Renderers rely on this convention as is.
func Orb(from, to, aspect float64) float64 {
	sign := -1.0
	if from > to {
		sign = 1
	}
	diff := math.Abs(from - to)

	var orb float64
	if diff > 180 {
		diff = 360 - diff
		orb = -(diff - aspect)
	} else {
		orb = (diff - aspect) * sign
	}
	return round2(orb)
}

// round2 rounds to 2 decimals, halves away from zero, so that
// round2(-v) == -round2(v).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Match returns every (from, to, aspect) combination whose orb is within
// the aspect's tolerance. Self matches and mirrored pairs are kept; see
// ExcludeSelfMatches and DedupeMirrors.
func Match(from, to []Point, defs []AspectDefinition) []AspectMatch {
	var matches []AspectMatch
	for _, f := range from {
		for _, t := range to {
			for _, def := range defs {
				orb := Orb(f.Angle, t.Angle, def.Angle)
				if math.Abs(orb) <= def.Orb {
					matches = append(matches, AspectMatch{
						Aspect:    def,
						From:      f,
						To:        t,
						Precision: orb,
					})
				}
			}
		}
	}
	return matches
}

// ExcludeSelfMatches drops matches of a point with itself.
func ExcludeSelfMatches(matches []AspectMatch) []AspectMatch {
	out := make([]AspectMatch, 0, len(matches))
	for _, m := range matches {
		if m.From.Name != m.To.Name {
			out = append(out, m)
		}
	}
	return out
}

// DedupeMirrors keeps the first of (A, B) and (B, A) for the same aspect.
func DedupeMirrors(matches []AspectMatch) []AspectMatch {
	type key struct{ aspect, a, b string }
	seen := make(map[key]struct{}, len(matches))
	out := make([]AspectMatch, 0, len(matches))
	for _, m := range matches {
		a, b := m.From.Name, m.To.Name
		if b < a {
			a, b = b, a
		}
		k := key{aspect: m.Aspect.Name, a: a, b: b}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
