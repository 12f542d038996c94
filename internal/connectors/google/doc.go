// Package google provides shared infrastructure for the Google API fetchers
// and the Gmail fallback sink.
//
// This package contains:
//   - LoadTokenSource, which reads an OAuth token file into an oauth2.TokenSource
//   - Service factories for the Calendar and Gmail API clients
//   - Error classification for common Google API failures (401, 403, 404, 429)
//   - Rate limiting to stay under per-user quotas
//
// # Usage
//
//	ts, err := google.LoadTokenSource(ctx, settings.Google.TokenFile)
//	svc, err := google.NewCalendarService(ctx, ts)
//	fetcher := calendar.New(svc, calendar.Config{CalendarID: "primary"})
//
// # OAuth2 Scopes
//
// The token must carry:
//   - https://www.googleapis.com/auth/calendar.readonly
//   - https://www.googleapis.com/auth/gmail.readonly
//   - https://www.googleapis.com/auth/gmail.send (only for the gmail fallback sink)
package google
