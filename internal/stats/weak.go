package stats

import (
	"sort"

	"github.com/verte-zerg/speedtype/internal/model"
)

// WeakestChars returns up to top characters ordered by ascending accuracy.
// Characters never typed are skipped. top <= 0 returns all of them.
func WeakestChars(aggs []model.CharAggregate, top int) []model.CharAggregate {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Total() > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := candidates[i].Accuracy(), candidates[j].Accuracy()
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

// SelectWeakChars returns the set of the lowest-accuracy characters, only
// counting characters with at least one miss.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	for _, agg := range WeakestChars(aggs, 0) {
		if top > 0 && len(weakSet) >= top {
			break
		}
		if agg.Misses == 0 {
			continue
		}
		runes := []rune(agg.Char)
		if len(runes) > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}
