package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"swiggytracker/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	keyLastSyncedAt = "lastSyncedAt"
	keySyncID       = "syncId"
)

// Now is the clock used to stamp commits.
var Now = time.Now

type orderRow struct {
	Position       int     `db:"position"`
	OrderID        string  `db:"order_id"`
	Amount         float64 `db:"amount"`
	OrderedAt      string  `db:"ordered_at"`
	RestaurantName string  `db:"restaurant_name"`
	Items          string  `db:"items"`
	Status         string  `db:"status"`
}

// CommitOrders replaces the stored order set with orders and stamps the
// commit time, all in one transaction. There is no merge: whatever an
// earlier sync stored is gone afterwards.
func CommitOrders(db *sqlx.DB, orders []model.OrderRecord) (model.SyncResult, error) {
	syncedAt := Now().UTC()
	syncID := uuid.NewString()

	tx, err := db.Beginx()
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to begin sync commit: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM orders`); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to clear previous orders: %w", err)
	}
	if err := insertOrdersInTx(tx, orders); err != nil {
		return model.SyncResult{}, err
	}

	const upsert = `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, keyLastSyncedAt, syncedAt.Format(time.RFC3339Nano)); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to store sync time: %w", err)
	}
	if _, err := tx.Exec(upsert, keySyncID, syncID); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to store sync id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to commit sync: %w", err)
	}
	return model.SyncResult{Orders: orders, SyncedAt: &syncedAt, SyncID: syncID}, nil
}

func insertOrdersInTx(tx *sqlx.Tx, orders []model.OrderRecord) error {
	const q = `
		INSERT INTO orders (position, order_id, amount, ordered_at, restaurant_name, items, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.Preparex(q)
	if err != nil {
		return fmt.Errorf("failed to prepare order insert statement: %w", err)
	}
	defer stmt.Close()

	for i, o := range orders {
		items := o.Items
		if items == nil {
			items = []string{}
		}
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to encode items of order %s: %w", o.ID, err)
		}
		orderedAt := ""
		if o.HasTimestamp() {
			orderedAt = o.Timestamp.Format(time.RFC3339Nano)
		}
		if _, err := stmt.Exec(i, o.ID, o.Amount, orderedAt, o.RestaurantName, string(itemsJSON), o.Status); err != nil {
			return fmt.Errorf("failed to insert order %s: %w", o.ID, err)
		}
	}
	return nil
}

// LoadSyncResult returns the stored orders in listing order. A database
// that has never been synced yields no orders and a nil SyncedAt. The
// orders and their sync stamp are read in one transaction, so they always
// come from the same commit.
func LoadSyncResult(db *sqlx.DB) (model.SyncResult, error) {
	tx, err := db.Beginx()
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to begin sync read: %w", err)
	}
	defer tx.Rollback()

	res, err := loadSyncResult(tx)
	if err != nil {
		return model.SyncResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to finish sync read: %w", err)
	}
	return res, nil
}

func loadSyncResult(dbtx DBTX) (model.SyncResult, error) {
	var rows []orderRow
	if err := dbtx.Select(&rows, `SELECT * FROM orders ORDER BY position`); err != nil {
		return model.SyncResult{}, fmt.Errorf("failed to load orders: %w", err)
	}

	result := model.SyncResult{Orders: make([]model.OrderRecord, 0, len(rows))}
	for _, r := range rows {
		rec := model.OrderRecord{
			ID:             r.OrderID,
			Amount:         r.Amount,
			RestaurantName: r.RestaurantName,
			Items:          []string{},
			Status:         r.Status,
		}
		if r.OrderedAt != "" {
			t, err := time.Parse(time.RFC3339Nano, r.OrderedAt)
			if err != nil {
				return model.SyncResult{}, fmt.Errorf("bad timestamp on stored order %s: %w", r.OrderID, err)
			}
			rec.Timestamp = t
		}
		if err := json.Unmarshal([]byte(r.Items), &rec.Items); err != nil {
			return model.SyncResult{}, fmt.Errorf("bad items on stored order %s: %w", r.OrderID, err)
		}
		result.Orders = append(result.Orders, rec)
	}

	syncedAt, err := getState(dbtx, keyLastSyncedAt)
	if err != nil {
		return model.SyncResult{}, err
	}
	if syncedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, syncedAt)
		if err != nil {
			return model.SyncResult{}, fmt.Errorf("bad %s value: %w", keyLastSyncedAt, err)
		}
		result.SyncedAt = &t
	}
	if result.SyncID, err = getState(dbtx, keySyncID); err != nil {
		return model.SyncResult{}, err
	}
	return result, nil
}

func getState(dbtx DBTX, key string) (string, error) {
	var value string
	err := dbtx.Get(&value, `SELECT value FROM sync_state WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}
