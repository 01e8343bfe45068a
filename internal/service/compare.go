package service

// Compare joins current aggregates with the comparison period by category id.
// Every current category appears once, in input order. Categories only present
// in comparison are dropped; a missing baseline counts as zero. If comparison
// repeats a category id, the first entry wins.
func Compare(current, comparison []CategoryAggregate) []ComparisonRecord {
	baseline := make(map[int64]CategoryAggregate, len(comparison))
	for _, c := range comparison {
		if _, seen := baseline[c.CategoryID]; !seen {
			baseline[c.CategoryID] = c
		}
	}

	out := make([]ComparisonRecord, 0, len(current))
	for _, cur := range current {
		prev := baseline[cur.CategoryID]
		out = append(out, ComparisonRecord{
			CategoryAggregate: cur,
			TotalRevenueDiff:  cur.TotalRevenue - prev.TotalRevenue,
			TotalOrdersDiff:   cur.TotalOrders - prev.TotalOrders,
			AdSpendsDiff:      cur.AdSpends - prev.AdSpends,
			AdRevenueDiff:     cur.AdRevenue - prev.AdRevenue,
			ROASDiff:          cur.ROAS - prev.ROAS,
			AOVDiff:           cur.AOV - prev.AOV,
		})
	}
	return out
}
