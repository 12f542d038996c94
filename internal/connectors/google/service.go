package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewGmailService creates a Gmail API service using ts.
// Extra options (e.g. option.WithEndpoint) are appended.
func NewGmailService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*gmail.Service, error) {
	return gmail.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}

// NewCalendarService creates a Google Calendar API service using ts.
func NewCalendarService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*calendar.Service, error) {
	return calendar.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}
