package dataprocessing

// TopFlop holds the leaderboard extremes by summed revenue. Flop is the
// lowest row with strictly positive revenue and is only reported when at
// least two distinct products earned revenue; a single earner is top only.
// When no product has positive revenue both are nil, which callers report
// as an informational condition rather than an error.
type TopFlop struct {
	Top  *AggregateRow `json:"top,omitempty"`
	Flop *AggregateRow `json:"flop,omitempty"`
}

// SelectTopFlop picks the top and flop products from leaderboard rows.
// The rows need not be pre-sorted. Top and flop are always distinct rows,
// so a revenue tie across the whole board still yields two products.
func SelectTopFlop(rows []AggregateRow) TopFlop {
	var top *AggregateRow
	positive := 0

	for i := range rows {
		row := &rows[i]
		if row.Revenue <= 0 {
			continue
		}
		positive++
		if top == nil || row.Revenue > top.Revenue {
			top = row
		}
	}

	var flop *AggregateRow
	if positive >= 2 {
		for i := range rows {
			row := &rows[i]
			if row.Revenue <= 0 || row == top {
				continue
			}
			if flop == nil || row.Revenue < flop.Revenue {
				flop = row
			}
		}
	}

	result := TopFlop{}
	if top != nil {
		t := *top
		result.Top = &t
	}
	if flop != nil {
		f := *flop
		result.Flop = &f
	}
	return result
}
