package zones

import "fmt"

// OverlappingAlgorithm picks the winner when a point or rectangle falls into
// several overlapping zones.
type OverlappingAlgorithm string

const (
	OverlapSmallest   OverlappingAlgorithm = "smallest"
	OverlapLargest    OverlappingAlgorithm = "largest"
	OverlapPositional OverlappingAlgorithm = "positional"
	OverlapNone       OverlappingAlgorithm = "none"
)

// ParseOverlappingAlgorithm converts a config value into an algorithm.
func ParseOverlappingAlgorithm(s string) (OverlappingAlgorithm, error) {
	switch a := OverlappingAlgorithm(s); a {
	case OverlapSmallest, OverlapLargest, OverlapPositional, OverlapNone:
		return a, nil
	}
	return "", fmt.Errorf("unknown overlapping zones algorithm %q", s)
}

// MinOverlapPercent is the share of the smaller rectangle a zone must cover
// to count as a drop target in ZonesFromRect.
const MinOverlapPercent = 50

// ZonesFromPoint returns the zones under p (work-area-relative). A zone is
// captured when p lies within its rect inflated by the sensitivity radius.
// A lone zone captured only through the radius does not count. Captured
// zones that do not overlap each other are all returned; otherwise algo
// decides.
func (l *Layout) ZonesFromPoint(p Point, algo OverlappingAlgorithm) IndexSet {
	radius := l.SensitivityRadius()
	var captured []Zone
	strict := 0
	for _, z := range l.zones {
		if z.rect.Contains(p) {
			strict++
		}
		if z.rect.Inflate(radius).Contains(p) {
			captured = append(captured, z)
		}
	}
	if len(captured) == 1 && strict == 0 {
		return IndexSet{}
	}
	return resolve(captured, algo)
}

// ZonesFromRect returns the zones that r substantially covers, resolved the
// same way as ZonesFromPoint.
func (l *Layout) ZonesFromRect(r Rect, algo OverlappingAlgorithm) IndexSet {
	if r.Empty() {
		return IndexSet{}
	}
	var captured []Zone
	for _, z := range l.zones {
		overlap := z.rect.Intersect(r).Area()
		if overlap == 0 {
			continue
		}
		smaller := min(z.rect.Area(), r.Area())
		if overlap*100 >= smaller*MinOverlapPercent {
			captured = append(captured, z)
		}
	}
	return resolve(captured, algo)
}

// ZonesInRect returns every zone lying entirely inside r.
func (l *Layout) ZonesInRect(r Rect) IndexSet {
	out := IndexSet{}
	for _, z := range l.zones {
		if r.ContainsRect(z.rect) {
			out = append(out, z.id)
		}
	}
	return out
}

// BoundingRect returns the union of the rects of the zones in set. ok is
// false when no index in set exists in the layout.
func (l *Layout) BoundingRect(set IndexSet) (Rect, bool) {
	var bounds Rect
	found := false
	for _, idx := range set {
		z, ok := l.Zone(idx)
		if !ok {
			continue
		}
		bounds = bounds.Union(z.rect)
		found = true
	}
	return bounds, found
}

func resolve(captured []Zone, algo OverlappingAlgorithm) IndexSet {
	if len(captured) == 0 {
		return IndexSet{}
	}
	if len(captured) == 1 || !anyOverlap(captured) {
		return idsOf(captured)
	}

	switch algo {
	case OverlapPositional:
		return idsOf(captured)
	case OverlapLargest:
		best := captured[0]
		for _, z := range captured[1:] {
			if z.rect.Area() > best.rect.Area() {
				best = z
			}
		}
		return IndexSet{best.id}
	case OverlapNone:
		return IndexSet{captured[len(captured)-1].id}
	default:
		best := captured[0]
		for _, z := range captured[1:] {
			if z.rect.Area() < best.rect.Area() {
				best = z
			}
		}
		return IndexSet{best.id}
	}
}

func anyOverlap(zs []Zone) bool {
	for i := range zs {
		for j := i + 1; j < len(zs); j++ {
			if zs[i].rect.Overlaps(zs[j].rect) {
				return true
			}
		}
	}
	return false
}

func idsOf(zs []Zone) IndexSet {
	out := make(IndexSet, len(zs))
	for i, z := range zs {
		out[i] = z.id
	}
	return out
}
