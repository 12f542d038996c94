package cli

import (
	"context"
	"fmt"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"
	gmailapi "google.golang.org/api/gmail/v1"

	filesink "github.com/custodia-labs/flightdeck/internal/adapters/driven/delivery/file"
	gmailsink "github.com/custodia-labs/flightdeck/internal/adapters/driven/delivery/gmail"
	"github.com/custodia-labs/flightdeck/internal/adapters/driven/delivery/webhook"
	"github.com/custodia-labs/flightdeck/internal/connectors/chatexport"
	"github.com/custodia-labs/flightdeck/internal/connectors/fixture"
	"github.com/custodia-labs/flightdeck/internal/connectors/google"
	gcal "github.com/custodia-labs/flightdeck/internal/connectors/google/calendar"
	gmailfetch "github.com/custodia-labs/flightdeck/internal/connectors/google/gmail"
	"github.com/custodia-labs/flightdeck/internal/connectors/multi"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/services"
	"github.com/custodia-labs/flightdeck/internal/logger"
	"github.com/custodia-labs/flightdeck/internal/normalisers"
	calnorm "github.com/custodia-labs/flightdeck/internal/normalisers/calendar"
	chatnorm "github.com/custodia-labs/flightdeck/internal/normalisers/chat"
	emailnorm "github.com/custodia-labs/flightdeck/internal/normalisers/email"
)

// googleClients holds the API services built from the configured token file.
type googleClients struct {
	gmail    *gmailapi.Service
	calendar *calendarapi.Service
}

// connectGoogle returns nil when no token file is configured.
func connectGoogle(ctx context.Context, s *domain.Settings) (*googleClients, error) {
	if s.Google.TokenFile == "" {
		return nil, nil
	}
	ts, err := google.LoadTokenSource(ctx, s.Google.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("loading google token: %w", err)
	}
	gm, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	cal, err := google.NewCalendarService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return &googleClients{gmail: gm, calendar: cal}, nil
}

// buildFetcher reads a fixture payload when input is set, otherwise it
// fetches live from every configured source.
func buildFetcher(s *domain.Settings, gc *googleClients, input string) driven.SnapshotFetcher {
	if input != "" {
		return fixture.New(input)
	}

	var fetchers []driven.SourceFetcher
	if s.Chat.ExportFile != "" {
		fetchers = append(fetchers, chatexport.New(s.Chat.ExportFile))
	}
	if gc != nil {
		fetchers = append(fetchers,
			gmailfetch.New(gc.gmail, gmailfetch.Config{
				User:     s.Email.User,
				Query:    s.Email.Query,
				Lookback: hours(s.Email.LookbackHours),
			}),
			gcal.New(gc.calendar, gcal.Config{
				CalendarID: s.Calendar.CalendarID,
				Lookahead:  hours(s.Calendar.LookaheadHours),
			}),
		)
	}
	if len(fetchers) == 0 {
		logger.Warn("no live sources configured; set chat.export_file or google.token_file, or pass --input")
	}
	return multi.New(fetchers...)
}

// buildDispatcher wires the webhook as primary and the configured fallback.
func buildDispatcher(s *domain.Settings, gc *googleClients) *services.Dispatcher {
	primary := webhook.New(s.Delivery.WebhookURL, s.Delivery.Timeout)

	var fallback driven.DeliverySink
	switch s.Delivery.Fallback.Kind {
	case domain.FallbackGmail:
		if gc == nil {
			logger.Warn("gmail fallback needs google.token_file; fallback disabled")
			break
		}
		fallback = gmailsink.New(gc.gmail, s.Email.User, s.Delivery.Fallback.Recipient)
	default:
		fallback = filesink.New(s.Delivery.Fallback.OutboxDir)
	}
	return services.NewDispatcher(primary, fallback, s.Delivery.Fallback.Subject, s.Delivery.Timeout)
}

func buildRegistry(s *domain.Settings) *normalisers.Registry {
	return normalisers.NewRegistry(
		chatnorm.New(s.Chat, s.Identity.Handles),
		calnorm.New(s.Calendar.LookaheadHours),
		emailnorm.New(s.Email.LookbackHours, s.Identity.Handles),
	)
}

// newPipeline builds the briefing pipeline. runLog may be nil.
func newPipeline(ctx context.Context, s *domain.Settings, runLog driven.RunLog, input string) (*services.Pipeline, error) {
	var gc *googleClients
	if input == "" || s.Delivery.Fallback.Kind == domain.FallbackGmail {
		var err error
		if gc, err = connectGoogle(ctx, s); err != nil {
			return nil, err
		}
	}
	return services.NewPipeline(
		buildFetcher(s, gc, input),
		buildRegistry(s),
		buildDispatcher(s, gc),
		runLog,
		*s,
	), nil
}

func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}
