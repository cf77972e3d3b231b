package render

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"swiggytracker/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxTableRows caps the recent-orders table.
const MaxTableRows = 50

const tableDateLayout = "02 Jan 2006"

var rupeePrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatRupees formats v with Indian digit grouping and up to two decimals.
func FormatRupees(v float64) string {
	return rupeePrinter.Sprintf("₹%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Cards are the four headline figures of the dashboard.
type Cards struct {
	TotalSpent        string `json:"totalSpent"`
	TotalOrders       string `json:"totalOrders"`
	AverageOrderValue string `json:"averageOrderValue"`
	MaxOrderValue     string `json:"maxOrderValue"`
}

func BuildCards(snap model.AggregateSnapshot) Cards {
	avg := 0.0
	if snap.AverageOrderValue != nil {
		avg = math.Round(*snap.AverageOrderValue)
	}
	return Cards{
		TotalSpent:        FormatRupees(snap.TotalSpent),
		TotalOrders:       rupeePrinter.Sprint(number.Decimal(snap.OrderCount)),
		AverageOrderValue: FormatRupees(avg),
		MaxOrderValue:     FormatRupees(snap.MaxOrderAmount),
	}
}

// RenderOrderTableHTML renders the first MaxTableRows orders as table rows.
func RenderOrderTableHTML(orders []model.OrderRecord) string {
	var sb strings.Builder

	sb.WriteString(`<thead><tr>`)
	sb.WriteString(`<th class="col-date">Date</th>`)
	sb.WriteString(`<th class="col-restaurant">Restaurant</th>`)
	sb.WriteString(`<th class="col-items">Items</th>`)
	sb.WriteString(`<th class="col-amount">Amount</th>`)
	sb.WriteString(`<th class="col-status">Status</th>`)
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	if len(orders) == 0 {
		sb.WriteString(`<tr><td colspan="5" class="center">No orders to show.</td></tr>`)
	}
	for i, o := range orders {
		if i == MaxTableRows {
			break
		}
		date := "-"
		if o.HasTimestamp() {
			date = o.Timestamp.Format(tableDateLayout)
		}
		items := "-"
		if len(o.Items) > 0 {
			items = fmt.Sprintf("%d items", len(o.Items))
		}

		sb.WriteString(`<tr>`)
		sb.WriteString(fmt.Sprintf(`<td class="center col-date">%s</td>`, date))
		sb.WriteString(fmt.Sprintf(`<td class="col-restaurant">%s</td>`, html.EscapeString(o.RestaurantName)))
		sb.WriteString(fmt.Sprintf(`<td class="center col-items">%s</td>`, items))
		sb.WriteString(fmt.Sprintf(`<td class="right col-amount">%s</td>`, FormatRupees(o.Amount)))
		sb.WriteString(fmt.Sprintf(`<td class="center col-status">%s</td>`, html.EscapeString(o.Status)))
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)

	return sb.String()
}

// LastSyncedText is the "Last synced" caption, empty when never synced.
func LastSyncedText(syncedAt *time.Time, loc *time.Location) string {
	if syncedAt == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return "Last synced: " + syncedAt.In(loc).Format("02 Jan 2006 15:04:05")
}
