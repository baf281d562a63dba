package entity

// Analytics is the read-side report for one link over a time range.
// Everything here is derived from stored events, nothing is persisted.
type Analytics struct {
	ShortCode   string         `json:"short_code"`
	Range       string         `json:"range"`
	TotalClicks int64          `json:"total_clicks"`
	Trend       []TrendPoint   `json:"trend"`
	Referrers   []CategoryStat `json:"referrers"`
	Countries   []CategoryStat `json:"countries"`
	Devices     []CategoryStat `json:"devices"`
	Browsers    []CategoryStat `json:"browsers"`
	PeakHours   []HourStat     `json:"peak_hours"`
}

type TrendPoint struct {
	Bucket string `json:"bucket"`
	Clicks int    `json:"clicks"`
}

type CategoryStat struct {
	Name       string  `json:"name"`
	Clicks     int     `json:"clicks"`
	Percentage float64 `json:"percentage"`
}

type HourStat struct {
	Hour   int `json:"hour"`
	Clicks int `json:"clicks"`
}
