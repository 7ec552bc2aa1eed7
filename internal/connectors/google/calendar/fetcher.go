package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/briefcast/internal/connectors/google"
	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// SourceName identifies this fetcher in summaries and configuration.
const SourceName = "calendar"

// Fetcher pulls upcoming events through the Google Calendar API.
type Fetcher struct {
	svc     *calendar.Service
	cfg     Config
	limiter *google.RateLimiter
}

// NewFetcher wraps a Calendar service as a document fetcher.
func NewFetcher(svc *calendar.Service, cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		svc:     svc,
		cfg:     cfg,
		limiter: google.NewRateLimiter(google.ServiceCalendar),
	}
}

// Source implements driven.Fetcher.
func (f *Fetcher) Source() string { return SourceName }

// Fetch returns one document per event in the window from the given
// time to LookAheadDays later. Recurring events are expanded into
// instances. An empty window yields an empty slice and no error.
func (f *Fetcher) Fetch(ctx context.Context, since time.Time) ([]domain.Document, error) {
	windowEnd := since.AddDate(0, 0, f.cfg.LookAheadDays)
	logger.Debug("calendar: listing events in [%s, %s]",
		since.Format(time.RFC3339), windowEnd.Format(time.RFC3339))

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	events, err := f.svc.Events.List(f.cfg.CalendarID).
		TimeMin(since.Format(time.RFC3339)).
		TimeMax(windowEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(f.cfg.MaxResults).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", google.WrapError(err))
	}

	var docs []domain.Document
	for _, event := range events.Items {
		if !shouldFetchEvent(event) {
			continue
		}
		docs = append(docs, domain.Document{
			Source:    SourceName,
			Title:     eventTitle(event),
			Content:   []byte(buildEventContent(event)),
			MIMEType:  "text/calendar",
			URL:       fmt.Sprintf("gcal://%s/events/%s", f.cfg.CalendarID, event.Id),
			Timestamp: eventStart(event),
			Metadata: map[string]any{
				"event_id":    event.Id,
				"calendar_id": f.cfg.CalendarID,
				"location":    event.Location,
				"html_link":   event.HtmlLink,
			},
		})
	}

	logger.Info("calendar: fetched %d event(s)", len(docs))
	return docs, nil
}
