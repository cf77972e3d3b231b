package orders

import (
	"strings"

	"swiggytracker/model"

	"golang.org/x/text/cases"
)

// Filter keeps the orders whose restaurant name or any item name contains
// term, ignoring case. A blank term returns orders unchanged.
func Filter(orders []model.OrderRecord, term string) []model.OrderRecord {
	term = strings.TrimSpace(term)
	if term == "" {
		return orders
	}
	fold := cases.Fold()
	needle := fold.String(term)

	matched := []model.OrderRecord{}
	for _, o := range orders {
		if matches(fold, o, needle) {
			matched = append(matched, o)
		}
	}
	return matched
}

func matches(fold cases.Caser, o model.OrderRecord, needle string) bool {
	if strings.Contains(fold.String(o.RestaurantName), needle) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(fold.String(item), needle) {
			return true
		}
	}
	return false
}
