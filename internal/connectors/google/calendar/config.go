package calendar

// Config holds Google Calendar fetcher configuration.
type Config struct {
	// CalendarID selects the calendar to read from.
	CalendarID string
	// LookAheadDays bounds the forward window of events to fetch.
	LookAheadDays int
	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CalendarID:    "primary",
		LookAheadDays: 7,
		MaxResults:    100,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.CalendarID == "" {
		c.CalendarID = def.CalendarID
	}
	if c.LookAheadDays <= 0 {
		c.LookAheadDays = def.LookAheadDays
	}
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
}
