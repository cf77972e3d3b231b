package dashboard

import (
	"fmt"
	"time"
)

const (
	PresetAllTime     = "all-time"
	PresetLast30Days  = "last-30-days"
	PresetLast3Months = "last-3-months"
)

const dateLayout = "2006-01-02"

// DateRange is a pair of YYYY-MM-DD bounds; empty means unbounded.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Preset resolves a named shortcut to sync bounds ending today.
func Preset(name string, now time.Time) (DateRange, error) {
	switch name {
	case PresetAllTime:
		return DateRange{}, nil
	case PresetLast30Days:
		return DateRange{
			StartDate: now.AddDate(0, 0, -30).Format(dateLayout),
			EndDate:   now.Format(dateLayout),
		}, nil
	case PresetLast3Months:
		return DateRange{
			StartDate: now.AddDate(0, -3, 0).Format(dateLayout),
			EndDate:   now.Format(dateLayout),
		}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown preset %q", name)
	}
}
