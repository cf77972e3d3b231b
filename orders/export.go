package orders

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"swiggytracker/model"
)

// ErrEmptyExport is returned instead of producing a file with no rows.
var ErrEmptyExport = errors.New("no orders to export")

var csvHeader = []string{"Order ID", "Date", "Restaurant", "Items", "Amount", "Status"}

const exportDateLayout = "2006-01-02 15:04:05"

// ExportCSV renders orders as CSV. Every field is quoted and embedded
// quotes are doubled; rows end with CRLF.
func ExportCSV(orders []model.OrderRecord) ([]byte, error) {
	if len(orders) == 0 {
		return nil, ErrEmptyExport
	}

	var sb strings.Builder
	writeRow(&sb, csvHeader)
	for _, o := range orders {
		date := ""
		if o.HasTimestamp() {
			date = o.Timestamp.Format(exportDateLayout)
		}
		writeRow(&sb, []string{
			o.ID,
			date,
			o.RestaurantName,
			strings.Join(o.Items, "; "),
			strconv.FormatFloat(o.Amount, 'f', -1, 64),
			o.Status,
		})
	}
	return []byte(sb.String()), nil
}

// ExportFileName returns orders_<YYYY-MM-DD>.csv for the given day.
func ExportFileName(now time.Time) string {
	return "orders_" + now.Format("2006-01-02") + ".csv"
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteString("\r\n")
}
