package discovery

import (
	"math"
	"sort"
)

// FilterByTags keeps the guides carrying every tag. No tags keeps all.
func FilterByTags(guides []Guide, tags []string) []Guide {
	out := make([]Guide, 0, len(guides))
	for _, g := range guides {
		if hasAllTags(g, tags) {
			out = append(out, g)
		}
	}
	return out
}

func hasAllTags(g Guide, tags []string) bool {
	for _, t := range tags {
		if !g.HasTag(t) {
			return false
		}
	}
	return true
}

// SortGuides returns a sorted copy. closest puts unknown distances last,
// popularity treats a missing count as 0. Any other mode keeps the order.
// Ties keep their input order.
func SortGuides(guides []Guide, mode SortMode) []Guide {
	out := make([]Guide, len(guides))
	copy(out, guides)

	switch mode {
	case SortClosest:
		sort.SliceStable(out, func(i, j int) bool {
			return distanceOrInf(out[i]) < distanceOrInf(out[j])
		})
	case SortPopularity:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PlayCount() > out[j].PlayCount()
		})
	}
	return out
}

func distanceOrInf(g Guide) float64 {
	if g.Distance == nil {
		return math.Inf(1)
	}
	return *g.Distance
}

// nextIndex and prevIndex move the carousel circularly over n photos.
func nextIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i + 1) % n
}

func prevIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i - 1 + n) % n
}

func tagValues(tags []TagOption) []string {
	values := make([]string, 0, len(tags))
	for _, t := range tags {
		values = append(values, t.Value)
	}
	return values
}
