package fetcher

import (
	"context"
	"fmt"
	"time"

	"swiggytracker/mappers"
	"swiggytracker/model"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxPages = 50
	// MinPageInterval is the pause between page requests. Shorter
	// intervals get the session throttled upstream.
	MinPageInterval = time.Second
)

// PageSource returns the raw body of one order-listing page.
// An empty cursor asks for the most recent page.
type PageSource interface {
	FetchPage(ctx context.Context, cursor string) ([]byte, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	MaxPages   int
	Interval   time.Duration
	Normalizer mappers.Normalizer
	Sleep      SleepFunc
}

// Fetcher walks the order listing one page at a time, newest first.
type Fetcher struct {
	source PageSource
	opts   Options
}

func New(source PageSource, opts Options) *Fetcher {
	if opts.MaxPages <= 0 || opts.MaxPages > DefaultMaxPages {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Interval < MinPageInterval {
		opts.Interval = MinPageInterval
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Fetcher{source: source, opts: opts}
}

// SyncOrders fetches pages until the listing runs past rng's start, runs
// out, fails, or MaxPages requests have been made. Transport failures and
// malformed pages end the pass early but are not errors: whatever was
// gathered so far is returned. Only cancellation of ctx is an error.
func (f *Fetcher) SyncOrders(ctx context.Context, rng DateRange) (model.FetchOutcome, error) {
	out := model.FetchOutcome{Orders: []model.OrderRecord{}}
	cursor := ""

	log.Info().Str("range", rng.String()).Int("maxPages", f.opts.MaxPages).Msg("starting order fetch")

	for page := 1; ; page++ {
		out.Pages = page

		body, err := f.source.FetchPage(ctx, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.FetchOutcome{}, ctxErr
			}
			log.Warn().Err(err).Int("page", page).Msg("order page request failed, keeping orders fetched so far")
			out.StopReason = model.StopTransport
			return out, nil
		}

		raws, err := DecodePage(body)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("unexpected order page payload, stopping")
			out.StopReason = model.StopMalformed
			return out, nil
		}
		if len(raws) == 0 {
			out.StopReason = model.StopEmptyPage
			return out, nil
		}

		batch := make([]model.OrderRecord, len(raws))
		kept := 0
		for i, raw := range raws {
			batch[i] = f.opts.Normalizer.Normalize(raw)
			if rng.Contains(batch[i].Timestamp) {
				out.Orders = append(out.Orders, batch[i])
				kept++
			}
		}
		log.Info().
			Int("page", page).
			Int("batch", len(batch)).
			Int("kept", kept).
			Int("total", len(out.Orders)).
			Msg("fetched order page")

		oldest := batch[len(batch)-1]
		if rng.PrecedesStart(oldest.Timestamp) {
			out.StopReason = model.StopBeforeStart
			return out, nil
		}
		if page >= f.opts.MaxPages {
			out.StopReason = model.StopMaxPages
			return out, nil
		}
		cursor = oldest.ID
		if cursor == "" {
			log.Warn().Int("page", page).Msg("oldest order on page has no id, cannot continue")
			out.StopReason = model.StopNoCursor
			return out, nil
		}

		if err := f.opts.Sleep(ctx, f.opts.Interval); err != nil {
			return model.FetchOutcome{}, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DateRange bounds a sync. Start is the first instant of the start day
// and End the last millisecond of the end day; either may be open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// NewDateRange parses YYYY-MM-DD strings in loc. Empty strings leave
// that side of the range open.
func NewDateRange(startDate, endDate string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	var rng DateRange
	if startDate != "" {
		day, err := time.ParseInLocation("2006-01-02", startDate, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		rng.Start = &day
	}
	if endDate != "" {
		day, err := time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		last := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		rng.End = &last
	}
	return rng, nil
}

// Contains reports whether t falls inside the range. Orders without a
// timestamp cannot be placed outside it and are kept.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	return true
}

// PrecedesStart reports whether t is older than the range start. Pages
// are newest first, so nothing after such an order is relevant.
func (r DateRange) PrecedesStart(t time.Time) bool {
	return r.Start != nil && !t.IsZero() && t.Before(*r.Start)
}

func (r DateRange) String() string {
	start, end := "*", "*"
	if r.Start != nil {
		start = r.Start.Format(time.RFC3339)
	}
	if r.End != nil {
		end = r.End.Format(time.RFC3339Nano)
	}
	return start + ".." + end
}
