// Package calendar fetches upcoming Google Calendar events as raw rows.
package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/flightdeck/internal/connectors/google"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Config holds Google Calendar fetch configuration.
type Config struct {
	// CalendarID is the calendar to read. Defaults to "primary".
	CalendarID string
	// Lookahead bounds how far ahead events are listed. Zero means one day.
	Lookahead time.Duration
	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CalendarID: "primary",
		Lookahead:  24 * time.Hour,
		MaxResults: 250,
	}
}

// Fetcher lists events starting between now and now+Lookahead.
type Fetcher struct {
	svc     *calendar.Service
	cfg     Config
	limiter *google.RateLimiter
	clock   func() time.Time
}

// New creates a calendar fetcher. Zero config fields take their defaults.
func New(svc *calendar.Service, cfg Config) *Fetcher {
	d := DefaultConfig()
	if cfg.CalendarID == "" {
		cfg.CalendarID = d.CalendarID
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = d.Lookahead
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = d.MaxResults
	}
	return &Fetcher{
		svc:     svc,
		cfg:     cfg,
		limiter: google.NewRateLimiter(google.ServiceCalendar),
		clock:   time.Now,
	}
}

// SetClock replaces the clock used for the listing window.
func (f *Fetcher) SetClock(clock func() time.Time) {
	if clock != nil {
		f.clock = clock
	}
}

// Source returns domain.SourceCalendar.
func (f *Fetcher) Source() domain.Source {
	return domain.SourceCalendar
}

// Fetch lists every page of upcoming events, expanded into single instances
// and ordered by start time.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	now := f.clock()
	var rows []domain.RawRow
	pageToken := ""

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := f.svc.Events.List(f.cfg.CalendarID).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(now.Format(time.RFC3339)).
			TimeMax(now.Add(f.cfg.Lookahead).Format(time.RFC3339)).
			MaxResults(f.cfg.MaxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				f.limiter.Backoff(0)
			}
			return nil, fmt.Errorf("list events for %s: %w", f.cfg.CalendarID, google.WrapError(err))
		}
		for _, event := range resp.Items {
			if ShouldInclude(event) {
				rows = append(rows, EventToRow(event, f.cfg.CalendarID))
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logger.Debug("calendar: fetched %d events from %s", len(rows), f.cfg.CalendarID)
	return rows, nil
}
