package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pevans/blogscrape"
	"github.com/pevans/blogscrape/config"
	"github.com/pevans/blogscrape/discovery"
	"github.com/pevans/blogscrape/publish"
	"github.com/pevans/blogscrape/scraper"
	"github.com/pevans/blogscrape/store"
)

// options holds raw flag values. Empty strings mean "not set".
type options struct {
	configPath  string
	output      string
	site        string
	mode        string
	maxArticles string
	delay       string
	timeout     string
	userAgent   string
	dbPath      string
	publishURL  string
	fromPath    string
}

// runConfig is the resolved configuration for one invocation.
type runConfig struct {
	site       *scraper.SiteConfig
	dbPath     string
	publishURL string
	// fromPath, when set, loads records from an earlier output file instead
	// of harvesting.
	fromPath string
}

func main() {
	if err := config.LoadEnvFiles(""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	rc, err := resolveConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, rc, os.Stdout, log.Default()); err != nil {
		log.Printf("ERROR: %v", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("blogscrape", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", getEnv("BLOGSCRAPE_CONFIG", ""), "Path to config file (default ~/.blogscrape/config.yaml)")
	fs.StringVar(&opts.output, "output", getEnv("BLOGSCRAPE_OUTPUT", ""), "Output JSON file (default "+scraper.DefaultOutputPath+")")
	fs.StringVar(&opts.site, "site", getEnv("BLOGSCRAPE_SITE", ""), "Site origin to harvest (default "+scraper.DefaultSiteURL+")")
	fs.StringVar(&opts.mode, "mode", getEnv("BLOGSCRAPE_MODE", ""), "Discovery mode: listing or feed (default listing)")
	fs.StringVar(&opts.maxArticles, "max", getEnv("BLOGSCRAPE_MAX", ""), "Maximum number of articles (default 5)")
	fs.StringVar(&opts.delay, "delay", getEnv("BLOGSCRAPE_DELAY", ""), "Pause after each successful article (default 1s)")
	fs.StringVar(&opts.timeout, "timeout", getEnv("BLOGSCRAPE_TIMEOUT", ""), "Per-request HTTP timeout (default none)")
	fs.StringVar(&opts.userAgent, "user-agent", getEnv("BLOGSCRAPE_USER_AGENT", ""), "User-Agent header for requests")
	fs.StringVar(&opts.dbPath, "db", getEnv("BLOGSCRAPE_DB", ""), "Also import results into this SQLite database")
	fs.StringVar(&opts.publishURL, "publish", getEnv("BLOGSCRAPE_PUBLISH_URL", ""), "Also publish results to this article backend")
	fs.StringVar(&opts.fromPath, "from", getEnv("BLOGSCRAPE_FROM", ""), "Skip harvesting and load records from this output file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return opts, nil
}

// resolveConfig layers defaults, the config file, and flags, in that order.
func resolveConfig(opts *options) (*runConfig, error) {
	rc := &runConfig{site: scraper.DefaultSiteConfig()}

	fileCfg, err := config.LoadConfigFile(opts.configPath)
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		if err := fileCfg.Apply(rc.site); err != nil {
			return nil, err
		}
		rc.dbPath = fileCfg.Storage.DSN
		rc.publishURL = fileCfg.Publish.BackendURL
	}

	if opts.output != "" {
		rc.site.OutputPath = opts.output
	}
	if opts.site != "" {
		rc.site.SiteURL = opts.site
	}
	if opts.mode != "" {
		rc.site.DiscoveryMode = opts.mode
	}
	if opts.userAgent != "" {
		rc.site.UserAgent = opts.userAgent
	}
	if opts.dbPath != "" {
		rc.dbPath = opts.dbPath
	}
	if opts.publishURL != "" {
		rc.publishURL = opts.publishURL
	}
	rc.fromPath = opts.fromPath

	if n, ok, err := parseInt("max", opts.maxArticles); err != nil {
		return nil, err
	} else if ok {
		rc.site.MaxArticles = n
	}
	if d, ok, err := parseDuration("delay", opts.delay); err != nil {
		return nil, err
	} else if ok {
		rc.site.Delay = d
	}
	if d, ok, err := parseDuration("timeout", opts.timeout); err != nil {
		return nil, err
	} else if ok {
		rc.site.Timeout = d
	}

	if err := rc.site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if rc.fromPath != "" && rc.dbPath == "" && rc.publishURL == "" {
		return nil, fmt.Errorf("-from needs -db or -publish")
	}

	return rc, nil
}

// run harvests, writes the output file, and then performs the optional store
// import and publish steps. Nothing is written if the harvest fails. With
// fromPath set, records come from that file and nothing is harvested or
// written.
func run(ctx context.Context, rc *runConfig, stdout io.Writer, logger *log.Logger) error {
	client := &http.Client{Timeout: rc.site.Timeout}

	var records []blogscrape.ArticleRecord
	if rc.fromPath != "" {
		loaded, err := blogscrape.ReadArticles(rc.fromPath)
		if err != nil {
			return err
		}
		records = loaded
		fmt.Fprintf(stdout, "Loaded %d articles from %s\n", len(records), rc.fromPath)
	} else {
		harvested, err := harvest(ctx, rc.site, client, stdout, logger)
		if err != nil {
			return err
		}
		records = harvested
	}

	if rc.dbPath != "" {
		if err := importRecords(rc.dbPath, records, stdout); err != nil {
			return err
		}
	}

	if rc.publishURL != "" {
		result, err := publish.NewClient(rc.publishURL, client).Publish(ctx, records)
		if err != nil {
			return fmt.Errorf("failed to publish articles: %w", err)
		}
		fmt.Fprintf(stdout, "Published to %s: %d imported, %d failed\n",
			rc.publishURL, result.ImportedCount, result.ErrorCount)
	}

	return nil
}

func harvest(
	ctx context.Context,
	cfg *scraper.SiteConfig,
	client *http.Client,
	stdout io.Writer,
	logger *log.Logger,
) ([]blogscrape.ArticleRecord, error) {
	banner := strings.Repeat("=", 60)
	fmt.Fprintln(stdout, banner)
	fmt.Fprintln(stdout, "BeyondChats Blog Scraper")
	fmt.Fprintln(stdout, banner)

	fetcher := discovery.NewFetcherWithClient(client, cfg.UserAgent)
	records, err := blogscrape.NewHarvester(cfg, fetcher, logger).Run(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, banner)
	fmt.Fprintf(stdout, "Successfully scraped %d articles!\n", len(records))
	fmt.Fprintln(stdout, banner)

	if err := blogscrape.WriteArticles(cfg.OutputPath, records); err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "\nSaved to %s\n", cfg.OutputPath)

	return records, nil
}

func importRecords(dbPath string, records []blogscrape.ArticleRecord, stdout io.Writer) error {
	articleStore, err := store.NewArticleStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open article store: %w", err)
	}
	defer articleStore.Close()

	inputs := make([]store.ArticleInput, 0, len(records))
	for _, record := range records {
		inputs = append(inputs, store.InputFromRecord(record))
	}

	result := articleStore.ImportBatch(inputs)
	fmt.Fprintf(stdout, "Imported into %s: %d imported, %d failed\n",
		dbPath, result.ImportedCount, result.ErrorCount)
	for _, importErr := range result.Errors {
		fmt.Fprintf(stdout, "  - %s: %s\n", importErr.Title, importErr.Error)
	}

	return nil
}
