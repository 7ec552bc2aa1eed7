package hackernews

// DefaultFeedURL is the hnrss.org front page feed. The points filter
// is appended from MinScore at fetch time.
const DefaultFeedURL = "https://hnrss.org/frontpage"

// Config holds HackerNews fetcher configuration.
type Config struct {
	// FeedURL is the RSS feed to read. Defaults to the hnrss.org
	// front page.
	FeedURL string
	// MinScore drops stories below this score.
	MinScore int
	// MaxStories caps the number of stories per fetch.
	MaxStories int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FeedURL:    DefaultFeedURL,
		MinScore:   100,
		MaxStories: 5,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.FeedURL == "" {
		c.FeedURL = def.FeedURL
	}
	if c.MinScore <= 0 {
		c.MinScore = def.MinScore
	}
	if c.MaxStories <= 0 {
		c.MaxStories = def.MaxStories
	}
}
