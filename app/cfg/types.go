package cfg

type Cfg struct {
	// Storage configuration
	DataDir     string
	CatalogFile string

	// Remote API configuration
	APIURL    string
	PageSize  int
	MaxPages  int
	Delay     int
	Timeout   int
	UserAgent string

	// Query configuration
	Search   string
	Category string
	Start    string
	End      string
	Export   string

	// Consolidation configuration
	Output string

	// HTTP server configuration
	Port string

	// Application metadata
	Debug   bool
	Version string

	// Positional command: harvest (default), consolidate, query, serve
	Command string
}
