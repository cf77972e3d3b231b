package aggregation

import (
	"fmt"
	"sort"
	"time"

	"swiggytracker/model"

	"github.com/shopspring/decimal"
)

// Weekdays lists day names Monday first, the order the habit chart uses.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// MonthKey returns "YYYY-MM" for t in t's own location. Keys sort
// lexicographically in chronological order.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Aggregate derives the dashboard statistics from orders in a single pass.
// Sums are accumulated as decimals so that totals of rupee-and-paise
// amounts do not drift.
func Aggregate(orders []model.OrderRecord) model.AggregateSnapshot {
	snap := model.AggregateSnapshot{
		OrderCount:        len(orders),
		SpendByMonth:      map[string]float64{},
		CountByRestaurant: map[string]int{},
		SpendByDayOfWeek:  map[string]float64{},
		SpendByHourOfDay:  map[int]float64{},
		RestaurantOrder:   []string{},
	}

	total := decimal.Zero
	byMonth := map[string]decimal.Decimal{}
	byDay := map[string]decimal.Decimal{}
	byHour := map[int]decimal.Decimal{}
	maxAmount := decimal.Zero

	for i := range orders {
		o := &orders[i]
		amount := decimal.NewFromFloat(o.Amount)
		total = total.Add(amount)

		// Strictly greater: the first order wins ties, and an all-zero set
		// has no max order.
		if amount.GreaterThan(maxAmount) {
			maxAmount = amount
			maxOrder := *o
			snap.MaxOrder = &maxOrder
		}

		if _, seen := snap.CountByRestaurant[o.RestaurantName]; !seen {
			snap.RestaurantOrder = append(snap.RestaurantOrder, o.RestaurantName)
		}
		snap.CountByRestaurant[o.RestaurantName]++

		// Undated orders count toward the totals but have no place on the
		// calendar charts.
		if !o.HasTimestamp() {
			continue
		}
		month := MonthKey(o.Timestamp)
		byMonth[month] = byMonth[month].Add(amount)
		day := o.Timestamp.Weekday().String()
		byDay[day] = byDay[day].Add(amount)
		hour := o.Timestamp.Hour()
		byHour[hour] = byHour[hour].Add(amount)
	}

	snap.TotalSpent = total.InexactFloat64()
	snap.MaxOrderAmount = maxAmount.InexactFloat64()
	if snap.OrderCount > 0 {
		avg := total.Div(decimal.NewFromInt(int64(snap.OrderCount))).InexactFloat64()
		snap.AverageOrderValue = &avg
	}
	for k, v := range byMonth {
		snap.SpendByMonth[k] = v.InexactFloat64()
	}
	for k, v := range byDay {
		snap.SpendByDayOfWeek[k] = v.InexactFloat64()
	}
	for k, v := range byHour {
		snap.SpendByHourOfDay[k] = v.InexactFloat64()
	}
	return snap
}

// TopRestaurants returns up to n restaurants by descending order count.
// Equal counts keep first-seen order.
func TopRestaurants(snap model.AggregateSnapshot, n int) []model.RestaurantCount {
	ranked := make([]model.RestaurantCount, 0, len(snap.RestaurantOrder))
	for _, name := range snap.RestaurantOrder {
		ranked = append(ranked, model.RestaurantCount{Name: name, Count: snap.CountByRestaurant[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// MonthlyTrend returns spendByMonth as a series in chronological order.
func MonthlyTrend(snap model.AggregateSnapshot) []model.SeriesPoint {
	keys := make([]string, 0, len(snap.SpendByMonth))
	for k := range snap.SpendByMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]model.SeriesPoint, len(keys))
	for i, k := range keys {
		series[i] = model.SeriesPoint{Label: k, Value: snap.SpendByMonth[k]}
	}
	return series
}

// WeekdaySeries returns spend per weekday, Monday through Sunday, with
// zero for days without orders.
func WeekdaySeries(snap model.AggregateSnapshot) []model.SeriesPoint {
	series := make([]model.SeriesPoint, len(Weekdays))
	for i, d := range Weekdays {
		name := d.String()
		series[i] = model.SeriesPoint{Label: name, Value: snap.SpendByDayOfWeek[name]}
	}
	return series
}

// HourSeries returns spend for each hour 0 to 23.
func HourSeries(snap model.AggregateSnapshot) []model.SeriesPoint {
	series := make([]model.SeriesPoint, 24)
	for h := 0; h < 24; h++ {
		series[h] = model.SeriesPoint{Label: fmt.Sprintf("%02d:00", h), Value: snap.SpendByHourOfDay[h]}
	}
	return series
}
