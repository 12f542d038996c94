// Package gmail fetches recent Gmail messages as raw rows.
package gmail

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/flightdeck/internal/connectors/google"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Config holds Gmail fetch configuration.
type Config struct {
	// User is the mailbox to read. Defaults to "me".
	User string
	// Query is an extra Gmail search query (optional).
	Query string
	// LabelIDs limits the listing to these labels. Defaults to INBOX.
	LabelIDs []string
	// Lookback bounds message age. Zero means one day.
	Lookback time.Duration
	// MaxResults caps how many messages are fetched.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		User:       "me",
		LabelIDs:   []string{"INBOX"},
		Lookback:   24 * time.Hour,
		MaxResults: 100,
	}
}

// Fetcher lists recent messages and reads their metadata.
type Fetcher struct {
	svc     *gmail.Service
	cfg     Config
	limiter *google.RateLimiter
	clock   func() time.Time
}

// New creates a Gmail fetcher. Zero config fields take their defaults.
func New(svc *gmail.Service, cfg Config) *Fetcher {
	d := DefaultConfig()
	if cfg.User == "" {
		cfg.User = d.User
	}
	if len(cfg.LabelIDs) == 0 {
		cfg.LabelIDs = d.LabelIDs
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = d.Lookback
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = d.MaxResults
	}
	return &Fetcher{
		svc:     svc,
		cfg:     cfg,
		limiter: google.NewRateLimiter(google.ServiceGmail),
		clock:   time.Now,
	}
}

// SetClock replaces the clock used for the lookback query.
func (f *Fetcher) SetClock(clock func() time.Time) {
	if clock != nil {
		f.clock = clock
	}
}

// Source returns domain.SourceEmail.
func (f *Fetcher) Source() domain.Source {
	return domain.SourceEmail
}

// SearchQuery builds the Gmail query: the configured query plus an
// after: bound from the lookback.
func (f *Fetcher) SearchQuery() string {
	after := f.clock().Add(-f.cfg.Lookback).Unix()
	return strings.TrimSpace(f.cfg.Query + " after:" + strconv.FormatInt(after, 10))
}

// Fetch lists matching message IDs then reads each message's metadata.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	ids, err := f.list(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RawRow, 0, len(ids))
	for _, id := range ids {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		msg, err := f.svc.Users.Messages.Get(f.cfg.User, id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).
			Do()
		if err != nil {
			if google.IsRateLimited(err) {
				f.limiter.Backoff(0)
			}
			return nil, fmt.Errorf("get message %s: %w", id, google.WrapError(err))
		}
		if ShouldInclude(msg) {
			rows = append(rows, MessageToRow(msg))
		}
	}

	logger.Debug("gmail: fetched %d messages for %s", len(rows), f.cfg.User)
	return rows, nil
}

func (f *Fetcher) list(ctx context.Context) ([]string, error) {
	query := f.SearchQuery()
	var ids []string
	pageToken := ""

	for int64(len(ids)) < f.cfg.MaxResults {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := f.svc.Users.Messages.List(f.cfg.User).
			Q(query).
			LabelIds(f.cfg.LabelIDs...).
			MaxResults(f.cfg.MaxResults - int64(len(ids))).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				f.limiter.Backoff(0)
			}
			return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}
