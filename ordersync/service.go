package ordersync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"swiggytracker/automation"
	"swiggytracker/config"
	"swiggytracker/database"
	"swiggytracker/fetcher"
	"swiggytracker/mappers"
	"swiggytracker/metrics"
	"swiggytracker/model"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrSyncInProgress = errors.New("a sync is already running")
	ErrInvalidRequest = errors.New("invalid sync request")
)

// NoSourceMessage is what the dashboard shows when there is no session to sync from.
const NoSourceMessage = "Please open Swiggy.com and log in first, then try syncing."

// Source is a page source that holds a browser session open.
type Source interface {
	fetcher.PageSource
	Close() error
}

// Connector opens a Source for one sync.
type Connector func(ctx context.Context) (Source, error)

// FetchDataRequest carries optional YYYY-MM-DD bounds.
type FetchDataRequest struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type FetchDataResponse struct {
	Success    bool             `json:"success"`
	Count      *int             `json:"count,omitempty"`
	Error      string           `json:"error,omitempty"`
	SyncID     string           `json:"syncId,omitempty"`
	StopReason model.StopReason `json:"stopReason,omitempty"`
	Truncated  bool             `json:"truncated,omitempty"`
}

// Result is a committed sync together with how its pagination ended.
type Result struct {
	Sync    model.SyncResult
	Outcome model.FetchOutcome
}

type Service struct {
	db       *sqlx.DB
	connect  Connector
	settings func() config.Config
	metrics  *metrics.Registry
	sleep    fetcher.SleepFunc
	validate *validator.Validate
	running  sync.Mutex
}

type Option func(*Service)

// WithSettings replaces config.GetConfig as the settings source.
func WithSettings(fn func() config.Config) Option {
	return func(s *Service) { s.settings = fn }
}

// WithSleep replaces the fetcher's inter-page wait.
func WithSleep(fn fetcher.SleepFunc) Option {
	return func(s *Service) { s.sleep = fn }
}

func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

func NewService(db *sqlx.DB, connect Connector, opts ...Option) *Service {
	s := &Service{
		db:       db,
		connect:  connect,
		settings: config.GetConfig,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	return s
}

// BrowserConnector opens an automation.Session from the current settings.
func BrowserConnector(settings func() config.Config) Connector {
	return func(ctx context.Context) (Source, error) {
		cfg := settings()
		sess, err := automation.Connect(ctx, automation.Options{
			OrdersAPIURL: cfg.OrdersAPIURL,
			ControlURL:   cfg.BrowserControlURL,
			ProfileDir:   cfg.BrowserProfileDir,
			Headless:     cfg.Headless,
		})
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

// FetchData is the sync entry point used by the dashboard.
func (s *Service) FetchData(ctx context.Context, req FetchDataRequest) FetchDataResponse {
	res, err := s.Run(ctx, req)
	return ToResponse(res, err)
}

// Run fetches the requested range and replaces the stored orders with it.
// Only one sync runs at a time; a second caller gets ErrSyncInProgress.
func (s *Service) Run(ctx context.Context, req FetchDataRequest) (Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	cfg := s.settings()
	rng, err := fetcher.NewDateRange(req.StartDate, req.EndDate, cfg.Location())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if rng.Start != nil && rng.End != nil && rng.End.Before(*rng.Start) {
		return Result{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRequest, req.EndDate, req.StartDate)
	}

	if !s.running.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer s.running.Unlock()

	started := time.Now()
	src, err := s.connect(ctx)
	if err != nil {
		s.metrics.SyncRuns.WithLabelValues("no_source").Inc()
		return Result{}, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn().Err(err).Msg("closing browser session")
		}
	}()

	f := fetcher.New(src, fetcher.Options{
		MaxPages: cfg.MaxPages,
		Interval: cfg.PageInterval(),
		Normalizer: mappers.Normalizer{
			Location:            cfg.Location(),
			AmountsInMinorUnits: cfg.AmountsInMinorUnits,
		},
		Sleep: s.sleep,
	})
	outcome, err := f.SyncOrders(ctx, rng)
	if err != nil {
		s.metrics.SyncRuns.WithLabelValues("canceled").Inc()
		return Result{}, fmt.Errorf("sync abandoned: %w", err)
	}
	s.metrics.PagesFetched.Add(float64(outcome.Pages))

	// A first page that is not an order page means the session is not
	// logged in. Committing would replace the stored orders with nothing.
	if outcome.Pages == 1 && outcome.StopReason == model.StopMalformed {
		s.metrics.SyncRuns.WithLabelValues("no_source").Inc()
		return Result{}, fmt.Errorf("%w: first order page was rejected", automation.ErrNoActiveSource)
	}

	committed, err := database.CommitOrders(s.db, outcome.Orders)
	if err != nil {
		s.metrics.SyncRuns.WithLabelValues("commit_failed").Inc()
		return Result{}, err
	}

	s.metrics.SyncRuns.WithLabelValues(string(outcome.StopReason)).Inc()
	s.metrics.StoredOrders.Set(float64(len(committed.Orders)))
	s.metrics.SyncDuration.Observe(time.Since(started).Seconds())
	s.metrics.LastSyncUnix.Set(float64(committed.SyncedAt.Unix()))

	log.Info().
		Str("syncId", committed.SyncID).
		Int("orders", len(committed.Orders)).
		Int("pages", outcome.Pages).
		Str("stopReason", string(outcome.StopReason)).
		Msg("sync committed")

	return Result{Sync: committed, Outcome: outcome}, nil
}

// ToResponse shapes a Run result for the dashboard.
func ToResponse(res Result, err error) FetchDataResponse {
	if err != nil {
		msg := err.Error()
		if errors.Is(err, automation.ErrNoActiveSource) {
			msg = NoSourceMessage
		}
		return FetchDataResponse{Success: false, Error: msg}
	}
	count := len(res.Sync.Orders)
	return FetchDataResponse{
		Success:    true,
		Count:      &count,
		SyncID:     res.Sync.SyncID,
		StopReason: res.Outcome.StopReason,
		Truncated:  res.Outcome.StopReason.Truncated(),
	}
}
