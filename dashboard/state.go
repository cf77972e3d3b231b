package dashboard

import (
	"fmt"
	"time"

	"swiggytracker/database"
	"swiggytracker/model"
	"swiggytracker/orders"

	"github.com/jmoiron/sqlx"
)

// State is the dashboard's view of the stored orders: the full synced
// set and the subset matching the current search term.
type State struct {
	Orders   []model.OrderRecord
	Filtered []model.OrderRecord
	Term     string
	SyncedAt *time.Time
}

// Load reads the last committed sync into a fresh, unfiltered State.
func Load(db *sqlx.DB) (State, error) {
	res, err := database.LoadSyncResult(db)
	if err != nil {
		return State{}, fmt.Errorf("failed to load dashboard state: %w", err)
	}
	return State{Orders: res.Orders, Filtered: res.Orders, SyncedAt: res.SyncedAt}, nil
}

// Search returns a copy of s filtered by term. The full order set is
// untouched, so searches do not narrow each other.
func (s State) Search(term string) State {
	s.Term = term
	s.Filtered = orders.Filter(s.Orders, term)
	return s
}

// Active is the order set the cards, charts, table and export work on.
func (s State) Active() []model.OrderRecord {
	if s.Filtered == nil {
		return s.Orders
	}
	return s.Filtered
}
