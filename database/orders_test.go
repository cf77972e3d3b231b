package database

import (
	"path/filepath"
	"testing"
	"time"

	"swiggytracker/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadSyncResult_NeverSynced(t *testing.T) {
	db := openTestDB(t)

	res, err := LoadSyncResult(db)
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.Nil(t, res.SyncedAt)
	assert.Equal(t, "", res.SyncID)
}

func TestCommitOrders_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	fixed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	old := Now
	Now = func() time.Time { return fixed }
	defer func() { Now = old }()

	ist := time.FixedZone("IST", 5*3600+1800)
	orders := []model.OrderRecord{
		{ID: "2", Amount: 452.5, Timestamp: time.Date(2024, 4, 30, 21, 5, 0, 0, ist), RestaurantName: `Joe's, "Best" Diner`, Items: []string{"Dosa", "Coffee"}, Status: "Delivered"},
		{ID: "1", Amount: 0, RestaurantName: "Unknown", Items: nil, Status: "Cancelled"},
	}

	committed, err := CommitOrders(db, orders)
	require.NoError(t, err)
	require.NotNil(t, committed.SyncedAt)
	assert.NotEmpty(t, committed.SyncID)

	res, err := LoadSyncResult(db)
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	require.NotNil(t, res.SyncedAt)
	assert.True(t, fixed.Equal(*res.SyncedAt))
	assert.Equal(t, committed.SyncID, res.SyncID)

	first := res.Orders[0]
	assert.Equal(t, "2", first.ID)
	assert.Equal(t, 452.5, first.Amount)
	assert.True(t, orders[0].Timestamp.Equal(first.Timestamp))
	assert.Equal(t, 21, first.Timestamp.Hour(), "local wall clock survives storage")
	assert.Equal(t, `Joe's, "Best" Diner`, first.RestaurantName)
	assert.Equal(t, []string{"Dosa", "Coffee"}, first.Items)

	second := res.Orders[1]
	assert.False(t, second.HasTimestamp())
	assert.Equal(t, []string{}, second.Items)
	assert.Equal(t, "Cancelled", second.Status)
}

func TestCommitOrders_OverwritesPreviousSync(t *testing.T) {
	db := openTestDB(t)

	_, err := CommitOrders(db, []model.OrderRecord{
		{ID: "a1", Amount: 10, RestaurantName: "A", Status: "Delivered"},
		{ID: "a2", Amount: 20, RestaurantName: "A", Status: "Delivered"},
	})
	require.NoError(t, err)

	syncB, err := CommitOrders(db, []model.OrderRecord{
		{ID: "b1", Amount: 30, RestaurantName: "B", Status: "Delivered"},
	})
	require.NoError(t, err)

	res, err := LoadSyncResult(db)
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "b1", res.Orders[0].ID)
	assert.Equal(t, syncB.SyncID, res.SyncID)
}

func TestCommitOrders_EmptySetClearsStore(t *testing.T) {
	db := openTestDB(t)

	_, err := CommitOrders(db, []model.OrderRecord{{ID: "x", RestaurantName: "X", Status: "Delivered"}})
	require.NoError(t, err)
	_, err = CommitOrders(db, []model.OrderRecord{})
	require.NoError(t, err)

	res, err := LoadSyncResult(db)
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.NotNil(t, res.SyncedAt)
}

func TestLoadSyncResult_PairsOrdersWithTheirOwnSync(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	defer db.Close()

	syncA, err := CommitOrders(db, []model.OrderRecord{{ID: "a1", RestaurantName: "A", Status: "Delivered"}})
	require.NoError(t, err)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	var n int
	require.NoError(t, tx.Get(&n, `SELECT COUNT(*) FROM orders`))

	// Lands while the read is open.
	syncB, err := CommitOrders(db, []model.OrderRecord{{ID: "b1", RestaurantName: "B", Status: "Delivered"}})
	require.NoError(t, err)

	res, err := loadSyncResult(tx)
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "a1", res.Orders[0].ID)
	assert.Equal(t, syncA.SyncID, res.SyncID)
	require.NoError(t, tx.Rollback())

	res, err = LoadSyncResult(db)
	require.NoError(t, err)
	assert.Equal(t, "b1", res.Orders[0].ID)
	assert.Equal(t, syncB.SyncID, res.SyncID)
}
