package cfg

type Cfg struct {
	// Content backend configuration
	BackendURL     string
	BackendTimeout int
	BackendRPS     float64
	AuthToken      string

	// Application configuration
	Port            string
	APIAccessKey    string
	SavedLimit      int
	TimelineLimit   int
	RefreshInterval int
	ScrapeWebsites  string
	SourceRulesFile string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
