package orders

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"swiggytracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV_QuotesEveryFieldAndRoundTrips(t *testing.T) {
	name := `Joe's, "Best" Diner`
	orders := []model.OrderRecord{{
		ID:             "123",
		Amount:         452.5,
		Timestamp:      time.Date(2024, 4, 30, 21, 5, 0, 0, time.UTC),
		RestaurantName: name,
		Items:          []string{"Dosa", "Filter Coffee"},
		Status:         "Delivered",
	}}

	out, err := ExportCSV(orders)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Order ID","Date","Restaurant","Items","Amount","Status"`, lines[0])
	assert.Equal(t, `"123","2024-04-30 21:05:00","Joe's, ""Best"" Diner","Dosa; Filter Coffee","452.5","Delivered"`, lines[1])

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, name, records[1][2])
	assert.Equal(t, "Dosa; Filter Coffee", records[1][3])
}

func TestExportCSV_MissingTimestampLeavesDateEmpty(t *testing.T) {
	out, err := ExportCSV([]model.OrderRecord{{ID: "9", RestaurantName: "Unknown", Status: "Delivered"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"9","","Unknown","","0","Delivered"`)
}

func TestExportCSV_EmptyIsAnError(t *testing.T) {
	out, err := ExportCSV(nil)
	assert.ErrorIs(t, err, ErrEmptyExport)
	assert.Nil(t, out)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "orders_2024-05-01.csv", ExportFileName(time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)))
}
