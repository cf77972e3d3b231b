package ordersync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swiggytracker/automation"
	"swiggytracker/config"
	"swiggytracker/database"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	pages   [][]byte
	calls   int
	closed  bool
	onFetch func(ctx context.Context) error
}

func (s *stubSource) FetchPage(ctx context.Context, cursor string) ([]byte, error) {
	if s.onFetch != nil {
		if err := s.onFetch(ctx); err != nil {
			return nil, err
		}
	}
	defer func() { s.calls++ }()
	if s.calls < len(s.pages) {
		return s.pages[s.calls], nil
	}
	return []byte(`{"statusCode":0,"data":{"orders":[]}}`), nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func page(orders ...string) []byte {
	return []byte(fmt.Sprintf(`{"statusCode":0,"data":{"orders":[%s]}}`, strings.Join(orders, ",")))
}

func rawOrder(id string, amount int, when string) string {
	return fmt.Sprintf(`{"order_id":%q,"net_total":%d,"order_time":%q,"restaurant_name":"R%s"}`, id, amount, when, id)
}

func testSettings() config.Config {
	c := config.Defaults()
	c.Timezone = "UTC"
	return c
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newTestService(t *testing.T, src *stubSource) (*Service, *sqlx.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	connect := func(ctx context.Context) (Source, error) { return src, nil }
	return NewService(db, connect, WithSettings(testSettings), WithSleep(noSleep)), db
}

func TestFetchData_SyncsRangeAndCommits(t *testing.T) {
	src := &stubSource{pages: [][]byte{
		page(rawOrder("5", 500, "2024-04-02 12:00:00"), rawOrder("4", 400, "2024-03-31 23:59:59")),
		page(rawOrder("3", 300, "2024-03-15 09:00:00"), rawOrder("2", 200, "2024-02-29 18:00:00")),
		page(rawOrder("1", 100, "2024-02-01 18:00:00")),
	}}
	svc, db := newTestService(t, src)

	resp := svc.FetchData(context.Background(), FetchDataRequest{StartDate: "2024-03-01", EndDate: "2024-03-31"})

	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
	assert.Equal(t, "reached_start_date", string(resp.StopReason))
	assert.False(t, resp.Truncated)
	assert.NotEmpty(t, resp.SyncID)
	assert.Equal(t, 2, src.calls, "the page past the start date ends the pass")
	assert.True(t, src.closed)

	stored, err := database.LoadSyncResult(db)
	require.NoError(t, err)
	require.Len(t, stored.Orders, 2)
	assert.Equal(t, "4", stored.Orders[0].ID)
	assert.Equal(t, "3", stored.Orders[1].ID)
}

func TestFetchData_SecondSyncReplacesFirst(t *testing.T) {
	src := &stubSource{pages: [][]byte{page(rawOrder("a", 10, "2024-01-01 10:00:00"))}}
	svc, db := newTestService(t, src)
	require.True(t, svc.FetchData(context.Background(), FetchDataRequest{}).Success)

	src.pages = [][]byte{page(rawOrder("b", 20, "2024-02-01 10:00:00"))}
	src.calls = 0
	require.True(t, svc.FetchData(context.Background(), FetchDataRequest{}).Success)

	stored, err := database.LoadSyncResult(db)
	require.NoError(t, err)
	require.Len(t, stored.Orders, 1)
	assert.Equal(t, "b", stored.Orders[0].ID)
}

func TestFetchData_NoActiveSource(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	connect := func(ctx context.Context) (Source, error) { return nil, automation.ErrNoActiveSource }
	svc := NewService(db, connect, WithSettings(testSettings), WithSleep(noSleep))

	resp := svc.FetchData(context.Background(), FetchDataRequest{})
	assert.False(t, resp.Success)
	assert.Equal(t, NoSourceMessage, resp.Error)
	assert.Nil(t, resp.Count)

	stored, err := database.LoadSyncResult(db)
	require.NoError(t, err)
	assert.Nil(t, stored.SyncedAt)
}

func TestFetchData_LoggedOutFirstPageKeepsStoredOrders(t *testing.T) {
	src := &stubSource{pages: [][]byte{
		page(rawOrder("2", 200, "2024-02-01 10:00:00"), rawOrder("1", 100, "2024-01-01 10:00:00")),
	}}
	svc, db := newTestService(t, src)
	first := svc.FetchData(context.Background(), FetchDataRequest{})
	require.True(t, first.Success, first.Error)
	before, err := database.LoadSyncResult(db)
	require.NoError(t, err)

	src.pages = [][]byte{[]byte(`{"statusCode":1,"statusMessage":"login required"}`)}
	src.calls = 0
	resp := svc.FetchData(context.Background(), FetchDataRequest{})

	assert.False(t, resp.Success)
	assert.Equal(t, NoSourceMessage, resp.Error)
	assert.Nil(t, resp.Count)

	after, err := database.LoadSyncResult(db)
	require.NoError(t, err)
	assert.Len(t, after.Orders, 2)
	assert.Equal(t, before.SyncID, after.SyncID)
}

func TestFetchDataHandler_LoggedOutIsServiceUnavailable(t *testing.T) {
	src := &stubSource{pages: [][]byte{[]byte(`<html>Please log in</html>`)}}
	svc, _ := newTestService(t, src)

	rec := httptest.NewRecorder()
	FetchDataHandler(svc)(rec, httptest.NewRequest(http.MethodPost, "/api/orders/sync", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRun_RejectsBadDates(t *testing.T) {
	svc, _ := newTestService(t, &stubSource{})

	_, err := svc.Run(context.Background(), FetchDataRequest{StartDate: "01/03/2024"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Run(context.Background(), FetchDataRequest{StartDate: "2024-03-10", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRun_CanceledSyncKeepsStoredOrders(t *testing.T) {
	src := &stubSource{pages: [][]byte{page(rawOrder("keep", 10, "2024-01-01 10:00:00"))}}
	svc, db := newTestService(t, src)
	require.True(t, svc.FetchData(context.Background(), FetchDataRequest{}).Success)

	ctx, cancel := context.WithCancel(context.Background())
	src.onFetch = func(context.Context) error {
		cancel()
		return errors.New("navigation aborted")
	}
	_, err := svc.Run(ctx, FetchDataRequest{})
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := database.LoadSyncResult(db)
	require.NoError(t, err)
	require.Len(t, stored.Orders, 1)
	assert.Equal(t, "keep", stored.Orders[0].ID)
}

func TestRun_OneSyncAtATime(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &stubSource{onFetch: func(context.Context) error {
		select {
		case <-started:
		default:
			close(started)
		}
		<-release
		return nil
	}}
	svc, _ := newTestService(t, src)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), FetchDataRequest{})
		done <- err
	}()
	<-started

	_, err := svc.Run(context.Background(), FetchDataRequest{})
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestFetchDataHandler(t *testing.T) {
	src := &stubSource{pages: [][]byte{page(rawOrder("1", 100, "2024-01-01 10:00:00"))}}
	svc, _ := newTestService(t, src)
	h := FetchDataHandler(svc)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/orders/sync", strings.NewReader(`{"startDate":"","endDate":""}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FetchDataResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/orders/sync", strings.NewReader(`{"startDate":"yesterday"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/orders/sync", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
