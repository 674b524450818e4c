package cfg

type Cfg struct {
	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	StartupDelay      int
	FetchTimeout      int
	FetchRetries      int
	APIAccessKey      string
	SourcesFile       string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	LogFormat string
	Version   string
}

type SeedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	FeedURL  string `yaml:"feed_url"`
	Category string `yaml:"category"`
	Favicon  string `yaml:"favicon"`
}
