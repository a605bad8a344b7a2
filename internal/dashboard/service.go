package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/core"
)

// Source is the record supplier the assembler pulls from. *clio.Client
// satisfies it; tests substitute fakes.
type Source interface {
	FetchRecords(ctx context.Context, kind clio.RecordKind, dr clio.DateRange) ([]core.Record, error)
	FetchTimeEntries(ctx context.Context, dr clio.DateRange) ([]core.Record, error)
	FetchPaymentActivities(ctx context.Context, dr clio.DateRange) ([]core.Record, error)
	FetchAllocations(ctx context.Context, dr clio.DateRange) ([]core.Record, error)
}

// Config tunes the assembler.
type Config struct {
	// Budget caps the wall-clock time of one full assembly, covering every
	// upstream request it fans out to. Zero means no deadline beyond the
	// caller's context.
	Budget time.Duration
	// SampleOnZero substitutes the demo fixture when every fetch succeeded
	// but produced an all-zero dashboard, which on a fresh tenant is
	// indistinguishable from a broken report mapping.
	SampleOnZero bool
	Logger       *slog.Logger
}

// Service assembles a complete dashboard snapshot from upstream records.
type Service struct {
	src          Source
	budget       time.Duration
	sampleOnZero bool
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(src Source, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		src:          src,
		budget:       cfg.Budget,
		sampleOnZero: cfg.SampleOnZero,
		logger:       logger,
		now:          time.Now,
	}
}

// Data fetches revenue, productivity and time records concurrently and folds
// them into one DashboardData. Auth failures and hard upstream errors abort
// the whole assembly; a missing report falls back to the equivalent raw
// collection endpoint where one exists.
func (s *Service) Data(ctx context.Context) (core.DashboardData, error) {
	now := s.now()
	yearRange := clio.DateRange{Start: core.StartOfYear(now), End: now}
	monthRange := clio.DateRange{Start: core.StartOfMonth(now), End: now}

	if s.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	var revenueRows, productivityRows, timeRows []core.Record

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.fetchWithFallback(ctx, clio.KindRevenue, yearRange, s.src.FetchPaymentActivities, s.src.FetchAllocations)
		revenueRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.src.FetchRecords(ctx, clio.KindProductivity, monthRange)
		if err != nil {
			var sue *clio.SourceUnavailableError
			if errors.As(err, &sue) {
				// No collection equivalent exists; the attorney board
				// falls back to the time entry rows instead.
				s.logger.WarnContext(ctx, "productivity report unavailable", "error", err)
				return nil
			}
			return err
		}
		productivityRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.fetchWithFallback(ctx, clio.KindTime, yearRange, s.src.FetchTimeEntries)
		timeRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardData{}, err
	}

	revenue := AggregateRevenue(revenueRows, now)

	attorneyRows := productivityRows
	if len(attorneyRows) == 0 {
		attorneyRows = timeRows
	}
	ytdTimeRows := timeRows
	if len(ytdTimeRows) == 0 {
		ytdTimeRows = productivityRows
	}

	data := core.DashboardData{
		MonthlyDeposits:       revenue.MonthlyDeposits,
		AttorneyBillableHours: AggregateHours(attorneyRows),
		WeeklyRevenue:         revenue.WeeklyRevenue,
		YTDTime:               AggregateYTDTime(ytdTimeRows, now),
		YTDRevenue:            revenue.YTDRevenue,
	}

	if s.sampleOnZero && data.IsZero() {
		s.logger.WarnContext(ctx, "dashboard is all zero, serving sample data",
			"revenue_rows", len(revenueRows),
			"productivity_rows", len(productivityRows),
			"time_rows", len(timeRows))
		return SampleData(), nil
	}
	return data, nil
}

// fetchWithFallback tries the report export first and walks the given
// collection fetchers in order when every report route is exhausted. Errors
// other than route exhaustion (auth, 5xx, network) abort immediately.
func (s *Service) fetchWithFallback(ctx context.Context, kind clio.RecordKind, dr clio.DateRange, fallbacks ...func(context.Context, clio.DateRange) ([]core.Record, error)) ([]core.Record, error) {
	rows, err := s.src.FetchRecords(ctx, kind, dr)
	if err == nil {
		return rows, nil
	}
	var sue *clio.SourceUnavailableError
	if !errors.As(err, &sue) {
		return nil, err
	}

	s.logger.WarnContext(ctx, "report unavailable, trying collection endpoints", "kind", string(kind), "error", err)
	for _, fetch := range fallbacks {
		rows, ferr := fetch(ctx, dr)
		if ferr == nil {
			return rows, nil
		}
		if clio.IsAuthError(ferr) {
			return nil, ferr
		}
		err = ferr
	}
	return nil, err
}
