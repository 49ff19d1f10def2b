package stats

import (
	"sort"

	"github.com/verte-zerg/speedtype/internal/model"
)

// TopCharsByFrequency returns the n most typed characters, ties broken by
// character.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []model.CharAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.CharAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti, tj := items[i].Total(), items[j].Total()
		if ti == tj {
			return items[i].Char < items[j].Char
		}
		return ti > tj
	})
	return items[:min(n, len(items))]
}
