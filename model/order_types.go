package model

import (
	"encoding/json"
	"time"
)

// RawOrder is one order as returned by the order-listing endpoint.
// Every field is kept undecoded because the upstream payload varies in
// both naming and type; mappers.Normalizer is the only reader.
type RawOrder struct {
	OrderID        json.RawMessage `json:"order_id,omitempty"`
	NetTotal       json.RawMessage `json:"net_total,omitempty"`
	OrderTotal     json.RawMessage `json:"order_total,omitempty"`
	OrderTime      json.RawMessage `json:"order_time,omitempty"`
	OrderDate      json.RawMessage `json:"order_date,omitempty"`
	RestaurantName json.RawMessage `json:"restaurant_name,omitempty"`
	Restaurant     json.RawMessage `json:"restaurant,omitempty"`
	Items          json.RawMessage `json:"items,omitempty"`
	OrderStatus    json.RawMessage `json:"order_status,omitempty"`
	Status         json.RawMessage `json:"status,omitempty"`
}

// OrderRecord is the normalized order kept by the Sync Store.
type OrderRecord struct {
	ID             string    `json:"id"`
	Amount         float64   `json:"amount"`
	Timestamp      time.Time `json:"timestamp"`
	RestaurantName string    `json:"restaurantName"`
	Items          []string  `json:"items"`
	Status         string    `json:"status"`
}

// HasTimestamp reports whether the upstream order carried a parseable time.
func (o OrderRecord) HasTimestamp() bool {
	return !o.Timestamp.IsZero()
}

const (
	UnknownRestaurant = "Unknown"
	DefaultStatus     = "Delivered"
)
