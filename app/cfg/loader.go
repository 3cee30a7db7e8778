package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DataDir     string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory containing per-category article files"`
	CatalogFile string `long:"catalog" env:"CATALOG_FILE" default:"./categories.yaml" description:"Category catalog file (falls back to the built-in catalog when absent)"`

	// Remote API configuration
	APIURL    string `long:"api-url" env:"API_URL" default:"https://www.slobodenpecat.mk/wp-json/wp/v2/posts" description:"WordPress posts endpoint"`
	PageSize  int    `long:"page-size" env:"PAGE_SIZE" default:"20" description:"Number of posts requested per page"`
	MaxPages  int    `long:"max-pages" env:"MAX_PAGES" default:"9999" description:"Safety ceiling on pages fetched per category"`
	Delay     int    `long:"delay" env:"FETCH_DELAY" default:"200" description:"Delay after each page fetch in milliseconds"`
	Timeout   int    `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36" description:"User agent string for HTTP requests"`

	// Query configuration
	Search   string `long:"search" description:"Keyword to search for (query command)"`
	Category string `long:"category" description:"Restrict query to a single category"`
	Start    string `long:"start" description:"Keep only articles scraped on or after this date (YYYY-MM-DD or RFC3339)"`
	End      string `long:"end" description:"Keep only articles scraped on or before this date (YYYY-MM-DD or RFC3339)"`
	Export   string `long:"export" description:"Write query results to a JSON file"`

	// Consolidation configuration
	Output string `long:"output" env:"OUTPUT_FILE" default:"consolidated.json" description:"Output file for the consolidate command"`

	// HTTP server configuration
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve command)"`

	// Application metadata
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"harvest (default), consolidate, query or serve"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DataDir:     raw.DataDir,
		CatalogFile: raw.CatalogFile,
		APIURL:      raw.APIURL,
		PageSize:    raw.PageSize,
		MaxPages:    raw.MaxPages,
		Delay:       raw.Delay,
		Timeout:     raw.Timeout,
		UserAgent:   raw.UserAgent,
		Search:      raw.Search,
		Category:    raw.Category,
		Start:       raw.Start,
		End:         raw.End,
		Export:      raw.Export,
		Output:      raw.Output,
		Port:        raw.Port,
		Debug:       raw.Debug,
		Version:     GetVersion(),
		Command:     cmp.Or(raw.Args.Command, "harvest"),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
