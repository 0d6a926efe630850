package period

import (
	"slices"
	"sort"
)

// Interval is a half-open integer interval [Start, End)
type Interval struct {
	Start int64
	End   int64
}

// Empty reports whether the interval contains no point
func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// FilterMode selects how partially covered requests are reported
type FilterMode string

const (
	// FilterModeCutter returns the uncovered pieces of each request
	FilterModeCutter FilterMode = "cutter"
	// FilterModeKeep returns whole requests that have any uncovered piece
	FilterModeKeep FilterMode = "keep"
)

// FilterUncoveredPeriods returns the parts of requested that are not covered by existing.
// Existing intervals may overlap or touch each other.
func FilterUncoveredPeriods(requested, existing []Interval, mode FilterMode) []Interval {
	if len(existing) == 0 {
		return slices.Clone(requested)
	}

	coverage := mergeCoverage(existing)

	var out []Interval
	seen := make(map[Interval]struct{})
	emit := func(i Interval) {
		if _, ok := seen[i]; ok {
			return
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}

	for _, req := range requested {
		pieces := subtract(req, coverage)
		if len(pieces) == 0 {
			continue
		}
		if mode == FilterModeKeep {
			emit(req)
			continue
		}
		for _, p := range pieces {
			emit(p)
		}
	}
	return out
}

// mergeCoverage sweeps the boundary points of the intervals and returns
// the disjoint, sorted union. Touching intervals are joined.
func mergeCoverage(intervals []Interval) []Interval {
	type boundary struct {
		at    int64
		delta int
	}
	points := make([]boundary, 0, 2*len(intervals))
	for _, i := range intervals {
		if i.Empty() {
			continue
		}
		points = append(points, boundary{at: i.Start, delta: 1}, boundary{at: i.End, delta: -1})
	}
	// Openings sort before closings at the same point so touching intervals join
	sort.Slice(points, func(a, b int) bool {
		if points[a].at != points[b].at {
			return points[a].at < points[b].at
		}
		return points[a].delta > points[b].delta
	})

	var merged []Interval
	depth := 0
	var start int64
	for _, p := range points {
		if depth == 0 && p.delta > 0 {
			start = p.at
		}
		depth += p.delta
		if depth == 0 {
			merged = append(merged, Interval{Start: start, End: p.at})
		}
	}
	return merged
}

// subtract returns the pieces of req not covered by the disjoint sorted coverage
func subtract(req Interval, coverage []Interval) []Interval {
	if req.Empty() {
		return nil
	}

	// First coverage interval that ends after the request starts
	idx := sort.Search(len(coverage), func(i int) bool { return coverage[i].End > req.Start })

	var pieces []Interval
	cursor := req.Start
	for ; idx < len(coverage) && coverage[idx].Start < req.End; idx++ {
		c := coverage[idx]
		if c.Start > cursor {
			pieces = append(pieces, Interval{Start: cursor, End: c.Start})
		}
		if c.End > cursor {
			cursor = c.End
		}
		if cursor >= req.End {
			break
		}
	}
	if cursor < req.End {
		pieces = append(pieces, Interval{Start: cursor, End: req.End})
	}
	return pieces
}
