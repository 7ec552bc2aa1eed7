package calendar

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// buildEventContent constructs the document text from event details.
// Sections are separated by blank lines so the calendar processor can
// treat each as its own block.
func buildEventContent(event *calendar.Event) string {
	var parts []string
	if event.Summary != "" {
		parts = append(parts, event.Summary)
	}
	if when := formatEventWindow(event); when != "" {
		parts = append(parts, "When: "+when)
	}
	if event.Location != "" {
		parts = append(parts, "Location: "+event.Location)
	}
	if event.Description != "" {
		parts = append(parts, event.Description)
	}
	if attendees := formatAttendees(event.Attendees); attendees != "" {
		parts = append(parts, attendees)
	}
	return strings.Join(parts, "\n\n")
}

// formatAttendees formats the attendee list as a string.
func formatAttendees(attendees []*calendar.EventAttendee) string {
	if len(attendees) == 0 {
		return ""
	}

	var names []string
	for _, a := range attendees {
		if a.DisplayName != "" {
			names = append(names, a.DisplayName)
		} else if a.Email != "" {
			names = append(names, a.Email)
		}
	}

	if len(names) == 0 {
		return ""
	}
	return "Attendees: " + strings.Join(names, ", ")
}

// formatEventWindow renders the start and end times in a readable form.
func formatEventWindow(event *calendar.Event) string {
	start := eventTimeString(event.Start)
	end := eventTimeString(event.End)
	switch {
	case start == "":
		return ""
	case end == "":
		return start
	default:
		return start + " to " + end
	}
}

func eventTimeString(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// eventStart parses the event start into a time.Time, best effort.
// All-day events carry only a date.
func eventStart(event *calendar.Event) time.Time {
	if event.Start == nil {
		return time.Time{}
	}
	if event.Start.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
			return ts
		}
	}
	if event.Start.Date != "" {
		if ts, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// shouldFetchEvent filters out cancelled and malformed events.
func shouldFetchEvent(event *calendar.Event) bool {
	return event != nil && event.Id != "" && event.Status != "cancelled"
}

func eventTitle(event *calendar.Event) string {
	if event.Summary != "" {
		return event.Summary
	}
	return "Untitled event"
}
