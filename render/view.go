package render

import (
	"time"

	"swiggytracker/aggregation"
	"swiggytracker/model"
)

// Chart ids as used by the dashboard page.
const (
	ChartMonthlyTrend   = "monthlyTrendChart"
	ChartTopRestaurants = "topRestaurantsChart"
	ChartWeekday        = "weekdayChart"
	ChartHour           = "hourChart"
)

const topRestaurantCount = 5

type ViewInput struct {
	Orders   []model.OrderRecord
	SyncedAt *time.Time
	Term     string
	Location *time.Location
}

// View is everything the dashboard page draws for one order set.
type View struct {
	Cards      Cards   `json:"cards"`
	Charts     []Chart `json:"charts"`
	TableHTML  string  `json:"tableHtml"`
	LastSynced string  `json:"lastSynced"`
	Term       string  `json:"term"`
	Count      int     `json:"count"`
}

// BuildView aggregates in.Orders and redraws every chart in sess.
func BuildView(sess *Session, in ViewInput) View {
	snap := aggregation.Aggregate(in.Orders)

	top := aggregation.TopRestaurants(snap, topRestaurantCount)
	topSeries := make([]model.SeriesPoint, len(top))
	for i, r := range top {
		topSeries[i] = model.SeriesPoint{Label: r.Name, Value: float64(r.Count)}
	}

	return View{
		Cards: BuildCards(snap),
		Charts: []Chart{
			sess.Draw(ChartMonthlyTrend, ChartLine, aggregation.MonthlyTrend(snap)),
			sess.Draw(ChartTopRestaurants, ChartDoughnut, topSeries),
			sess.Draw(ChartWeekday, ChartBar, aggregation.WeekdaySeries(snap)),
			sess.Draw(ChartHour, ChartBar, aggregation.HourSeries(snap)),
		},
		TableHTML:  RenderOrderTableHTML(in.Orders),
		LastSynced: LastSyncedText(in.SyncedAt, in.Location),
		Term:       in.Term,
		Count:      len(in.Orders),
	}
}
