package gmail

// Config holds Gmail fetcher configuration.
type Config struct {
	// SupportedAttachments lists the MIME types worth downloading.
	// Attachments with other types are skipped.
	SupportedAttachments []string
	// Query is an extra Gmail search query appended to the date filter
	// (optional).
	Query string
	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SupportedAttachments: []string{"application/pdf", "text/plain", "text/html"},
		MaxResults:           50,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.SupportedAttachments) == 0 {
		c.SupportedAttachments = def.SupportedAttachments
	}
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
}
