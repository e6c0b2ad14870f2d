package dataprocessing

// MetricChange describes how one metric moved between two periods.
type MetricChange struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
	// PercentChange is relative to the previous value and guarded: when
	// the previous value is zero it stays 0. For the rate KPIs Delta is
	// already in points, so PercentChange is omitted there.
	PercentChange float64 `json:"percent_change"`
	Direction     string  `json:"direction"`
}

// Comparison summarizes the movement between the two most recent periods
// of a time series.
type Comparison struct {
	PreviousPeriod string         `json:"previous_period"`
	CurrentPeriod  string         `json:"current_period"`
	Metrics        []MetricChange `json:"metrics"`
}

// ComparePeriods builds a comparison between the last two rows of a
// chronologically sorted period series. The second return value is false
// when fewer than two periods exist; that is an informational condition,
// not an error, and no partial comparison is produced.
func ComparePeriods(rows []AggregateRow) (*Comparison, bool) {
	if len(rows) < 2 {
		return nil, false
	}

	previous := rows[len(rows)-2]
	current := rows[len(rows)-1]

	cmp := &Comparison{
		PreviousPeriod: previous.Key,
		CurrentPeriod:  current.Key,
	}

	add := func(name string, prev, cur float64, relative bool) {
		change := MetricChange{
			Name:     name,
			Previous: prev,
			Current:  cur,
			Delta:    cur - prev,
		}
		if relative && prev > 0 {
			change.PercentChange = (cur/prev - 1) * 100
		}
		switch {
		case change.Delta > 0:
			change.Direction = "up"
		case change.Delta < 0:
			change.Direction = "down"
		default:
			change.Direction = "flat"
		}
		cmp.Metrics = append(cmp.Metrics, change)
	}

	add("units", previous.Units, current.Units, true)
	add("revenue", previous.Revenue, current.Revenue, true)
	add("page_views", previous.PageViews, current.PageViews, true)
	add("sessions", previous.Sessions, current.Sessions, true)
	add("conversion_rate", previous.ConversionRate, current.ConversionRate, false)
	add("average_order_value", previous.AverageOrderValue, current.AverageOrderValue, false)
	add("revenue_per_session", previous.RevenuePerSession, current.RevenuePerSession, false)

	return cmp, true
}
