package model

// AggregateSnapshot holds the statistics derived from an order list.
// It is recomputed on demand and never persisted.
type AggregateSnapshot struct {
	TotalSpent float64 `json:"totalSpent"`
	OrderCount int     `json:"orderCount"`
	// AverageOrderValue is nil when OrderCount is zero.
	AverageOrderValue *float64 `json:"averageOrderValue"`
	// MaxOrder is nil unless at least one order has a positive amount.
	MaxOrder       *OrderRecord `json:"maxOrder"`
	MaxOrderAmount float64      `json:"maxOrderAmount"`

	SpendByMonth      map[string]float64 `json:"spendByMonth"`
	CountByRestaurant map[string]int     `json:"countByRestaurant"`
	SpendByDayOfWeek  map[string]float64 `json:"spendByDayOfWeek"`
	SpendByHourOfDay  map[int]float64    `json:"spendByHourOfDay"`

	// RestaurantOrder lists restaurant names in first-seen order.
	RestaurantOrder []string `json:"-"`
}

// RestaurantCount is one entry of the top-restaurants view.
type RestaurantCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SeriesPoint is one labelled value of a chart series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
