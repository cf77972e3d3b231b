package mappers

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"swiggytracker/model"

	"github.com/shopspring/decimal"
)

// Normalizer turns RawOrder payloads into OrderRecords.
// Normalize never fails: anything missing or malformed falls back to a default.
type Normalizer struct {
	// Location is used for timestamps that carry no zone and for the local
	// calendar the aggregation buckets by. Nil means time.Local.
	Location *time.Location
	// AmountsInMinorUnits divides every amount by 100 (paise -> rupees).
	AmountsInMinorUnits bool
}

// NormalizeOrder normalizes with local time and amounts taken as-is.
func NormalizeOrder(raw model.RawOrder) model.OrderRecord {
	return Normalizer{}.Normalize(raw)
}

func (n Normalizer) Normalize(raw model.RawOrder) model.OrderRecord {
	return model.OrderRecord{
		ID:             scalarString(raw.OrderID),
		Amount:         n.amount(raw),
		Timestamp:      n.timestamp(raw),
		RestaurantName: restaurantName(raw),
		Items:          itemNames(raw.Items),
		Status:         status(raw),
	}
}

func (n Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

// amount takes net_total, then order_total. A zero or negative primary
// value falls through to the secondary one.
func (n Normalizer) amount(raw model.RawOrder) float64 {
	for _, field := range []json.RawMessage{raw.NetTotal, raw.OrderTotal} {
		d, ok := scalarDecimal(field)
		if !ok || !d.IsPositive() {
			continue
		}
		if n.AmountsInMinorUnits {
			d = d.Shift(-2)
		}
		return d.InexactFloat64()
	}
	return 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (n Normalizer) timestamp(raw model.RawOrder) time.Time {
	loc := n.location()
	for _, field := range []json.RawMessage{raw.OrderTime, raw.OrderDate} {
		if t, ok := parseTime(field, loc); ok {
			return t
		}
	}
	return time.Time{}
}

func parseTime(field json.RawMessage, loc *time.Location) (time.Time, bool) {
	v, ok := scalar(field)
	if !ok {
		return time.Time{}, false
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), true
			}
		}
	case json.Number:
		epoch, err := val.Int64()
		if err != nil || epoch <= 0 {
			return time.Time{}, false
		}
		// 13-digit values are milliseconds.
		if epoch > 1e12 {
			return time.UnixMilli(epoch).In(loc), true
		}
		return time.Unix(epoch, 0).In(loc), true
	}
	return time.Time{}, false
}

func restaurantName(raw model.RawOrder) string {
	if name := scalarString(raw.RestaurantName); name != "" {
		return name
	}
	var nested struct {
		Name json.RawMessage `json:"name"`
	}
	if len(raw.Restaurant) > 0 && json.Unmarshal(raw.Restaurant, &nested) == nil {
		if name := scalarString(nested.Name); name != "" {
			return name
		}
	}
	return model.UnknownRestaurant
}

func itemNames(field json.RawMessage) []string {
	names := []string{}
	var elems []json.RawMessage
	if len(field) == 0 || json.Unmarshal(field, &elems) != nil {
		return names
	}
	for _, elem := range elems {
		if name := scalarString(elem); name != "" {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name json.RawMessage `json:"name"`
		}
		if json.Unmarshal(elem, &obj) == nil {
			if name := scalarString(obj.Name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func status(raw model.RawOrder) string {
	for _, field := range []json.RawMessage{raw.OrderStatus, raw.Status} {
		if s := scalarString(field); s != "" {
			return s
		}
	}
	return model.DefaultStatus
}

// scalar decodes a JSON string or number. Objects, arrays, booleans and
// null are reported as absent.
func scalar(field json.RawMessage) (interface{}, bool) {
	if len(bytes.TrimSpace(field)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(field))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case string, json.Number:
		return v, true
	default:
		return nil, false
	}
}

func scalarString(field json.RawMessage) string {
	v, ok := scalar(field)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	}
	return ""
}

func scalarDecimal(field json.RawMessage) (decimal.Decimal, bool) {
	v, ok := scalar(field)
	if !ok {
		return decimal.Zero, false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
