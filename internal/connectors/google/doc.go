// Package google provides shared infrastructure for the Google API
// fetchers.
//
// This package contains common utilities used by the gmail and
// calendar fetchers:
//   - Building an oauth2.TokenSource from stored credential files
//   - Service factories for creating Google API clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// Each fetcher uses this package to create authenticated API clients:
//
//	ts, err := google.NewTokenSource(ctx, credentialsPath, tokenPath)
//	svc, err := google.NewGmailService(ctx, ts)
//
// Both services run on read-only scopes:
//   - https://www.googleapis.com/auth/gmail.readonly
//   - https://www.googleapis.com/auth/calendar.events.readonly
package google
