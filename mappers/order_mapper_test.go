package mappers

import (
	"encoding/json"
	"testing"
	"time"

	"swiggytracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFromJSON(t *testing.T, s string) model.RawOrder {
	t.Helper()
	var raw model.RawOrder
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalize_EmptyOrderGetsDefaults(t *testing.T) {
	rec := NormalizeOrder(model.RawOrder{})

	assert.Equal(t, "", rec.ID)
	assert.Equal(t, 0.0, rec.Amount)
	assert.True(t, rec.Timestamp.IsZero())
	assert.Equal(t, "Unknown", rec.RestaurantName)
	assert.Equal(t, []string{}, rec.Items)
	assert.Equal(t, "Delivered", rec.Status)
}

func TestNormalize_MalformedFieldsDegrade(t *testing.T) {
	raw := rawFromJSON(t, `{
		"order_id": {"nested": true},
		"net_total": "abc",
		"order_total": [1,2],
		"order_time": "yesterday",
		"restaurant_name": null,
		"restaurant": "not an object",
		"items": "burger",
		"order_status": 7
	}`)
	rec := NormalizeOrder(raw)

	assert.Equal(t, "", rec.ID)
	assert.Equal(t, 0.0, rec.Amount)
	assert.False(t, rec.HasTimestamp())
	assert.Equal(t, "Unknown", rec.RestaurantName)
	assert.Empty(t, rec.Items)
	assert.Equal(t, "7", rec.Status)
}

func TestNormalize_FullOrder(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	n := Normalizer{Location: loc}
	raw := rawFromJSON(t, `{
		"order_id": 171234567890,
		"net_total": "452.50",
		"order_time": "2024-03-09 20:15:00",
		"restaurant_name": "Pizza Hut",
		"items": ["Veg Pizza", {"name": "Garlic Bread"}, {"qty": 1}],
		"order_status": "Cancelled"
	}`)
	rec := n.Normalize(raw)

	assert.Equal(t, "171234567890", rec.ID)
	assert.Equal(t, 452.5, rec.Amount)
	assert.True(t, time.Date(2024, 3, 9, 20, 15, 0, 0, loc).Equal(rec.Timestamp), "got %v", rec.Timestamp)
	assert.Equal(t, "Pizza Hut", rec.RestaurantName)
	assert.Equal(t, []string{"Veg Pizza", "Garlic Bread"}, rec.Items)
	assert.Equal(t, "Cancelled", rec.Status)
}

func TestNormalize_FallbackFields(t *testing.T) {
	raw := rawFromJSON(t, `{
		"net_total": 0,
		"order_total": 310,
		"order_date": "2024-01-05T10:00:00Z",
		"restaurant": {"name": "Meghana Foods"},
		"status": "Delivered late"
	}`)
	rec := Normalizer{Location: time.UTC}.Normalize(raw)

	assert.Equal(t, 310.0, rec.Amount)
	assert.True(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC).Equal(rec.Timestamp), "got %v", rec.Timestamp)
	assert.Equal(t, "Meghana Foods", rec.RestaurantName)
	assert.Equal(t, "Delivered late", rec.Status)
}

func TestNormalize_EpochMillisTimestamp(t *testing.T) {
	raw := rawFromJSON(t, `{"order_time": 1704067200000}`)
	rec := Normalizer{Location: time.UTC}.Normalize(raw)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(rec.Timestamp), "got %v", rec.Timestamp)
}

func TestNormalize_MinorUnits(t *testing.T) {
	raw := rawFromJSON(t, `{"net_total": 45250}`)

	assert.Equal(t, 45250.0, NormalizeOrder(raw).Amount)
	assert.Equal(t, 452.5, Normalizer{AmountsInMinorUnits: true}.Normalize(raw).Amount)
}

func TestNormalize_NegativeAmountBecomesZero(t *testing.T) {
	raw := rawFromJSON(t, `{"net_total": -20}`)
	assert.Equal(t, 0.0, NormalizeOrder(raw).Amount)
}
