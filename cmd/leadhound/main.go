// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/ats"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/export"
	"github.com/ternarybob/leadhound/internal/httpclient"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
	"github.com/ternarybob/leadhound/internal/scoring"
	"github.com/ternarybob/leadhound/internal/services/discovery"
	"github.com/ternarybob/leadhound/internal/services/enrichment"
	"github.com/ternarybob/leadhound/internal/sources"
	"github.com/ternarybob/leadhound/internal/storage/sqlite"
)

const (
	exitOK          = 0
	exitInterrupted = 1
	exitFatal       = 2
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitFatal)
	}

	verb := os.Args[1]
	args := os.Args[2:]

	switch verb {
	case "run":
		os.Exit(cmdRun(args))
	case "status":
		os.Exit(cmdStatus(args))
	case "export":
		os.Exit(cmdExport(args))
	case "upload":
		os.Exit(cmdUpload(args))
	case "reset":
		os.Exit(cmdReset(args))
	case "version", "-version", "--version", "-v":
		fmt.Printf("LeadHound version %s\n", common.GetFullVersion())
		os.Exit(exitOK)
	case "help", "-h", "--help":
		usage()
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", verb)
		usage()
		os.Exit(exitFatal)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `LeadHound - hiring-signal lead discovery

Usage: leadhound <command> [flags]

Commands:
  run       Execute the discovery pipeline once
  status    Print statistics from the store
  export    Write leads to CSV or JSON
  upload    Push leads to the website endpoint
  reset     Clear seen-company markers
  version   Print version information

Run 'leadhound <command> -h' for command flags.
`)
}

func registerConfigFlag(fs *flag.FlagSet) *configPaths {
	var paths configPaths
	fs.Var(&paths, "config", "Configuration file path (repeatable, later files override earlier ones)")
	fs.Var(&paths, "c", "Configuration file path (shorthand)")
	return &paths
}

// setup loads configuration, initializes the logger and prints the
// banner. Startup order matters: config first, logger from config,
// banner last.
func setup(paths configPaths) (*common.Config, arbor.ILogger, error) {
	if len(paths) == 0 {
		if _, err := os.Stat("leadhound.toml"); err == nil {
			paths = append(paths, "leadhound.toml")
		}
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		return nil, nil, err
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.LoadVersionFromFile())
	return config, logger, nil
}

func openStore(config *common.Config, logger arbor.ILogger) (interfaces.StorageManager, error) {
	return sqlite.NewManager(logger, &config.Storage.SQLite)
}

func buildSource(config *common.Config, logger arbor.ILogger) (sources.Adapter, error) {
	switch config.Discovery.Source {
	case "csv":
		return sources.NewCSVAdapter(config.Discovery.InputCSVPath, logger), nil
	case "github":
		return sources.NewGitHubReadmeAdapter(config.Discovery.GithubRepo, config.Discovery.GithubToken, logger), nil
	case "serpapi":
		return sources.NewSerpJobsAdapter(
			config.Search.SerpAPIKey,
			config.Search.Query,
			config.Search.MaxSearchesPerRun,
			config.Search.MetrosPerRun,
			config.Search.StateFilePath,
			httpclient.NewDefaultHTTPClient(30*time.Second),
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown discovery source %q", config.Discovery.Source)
	}
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	paths := registerConfigFlag(fs)
	dryRun := fs.Bool("dry-run", false, "Detect and score without writing anything")
	maxSearches := fs.Int("max-searches", 0, "Override the search budget for aggregator sources")
	date := fs.String("date", "", "Only process listings from this date (YYYY-MM-DD)")
	allDays := fs.Bool("all-days", false, "Process listings from every available date")
	skipDecisionMakers := fs.Bool("skip-decision-makers", false, "Skip the decision-maker lookup pass")
	skipEmailLookup := fs.Bool("skip-email-lookup", false, "Skip the email lookup pass")
	verbose := fs.Bool("verbose", false, "Debug logging")
	fs.Parse(args)

	config, logger, err := setup(*paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leadhound: %v\n", err)
		return exitFatal
	}
	if *verbose {
		logger = logger.WithLevelFromString("debug")
	}
	if *maxSearches > 0 {
		config.Search.MaxSearchesPerRun = *maxSearches
	}

	dateFilter := *date
	if dateFilter == "" && !*allDays {
		dateFilter = time.Now().Format("2006-01-02")
	}
	if *allDays {
		dateFilter = ""
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return exitFatal
	}
	defer store.Close()

	source, err := buildSource(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build source adapter")
		return exitFatal
	}

	profile, err := scoring.ProfileByName(config.Discovery.Profile)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid scoring profile")
		return exitFatal
	}
	scorer := scoring.NewScorer(profile, config.Discovery.RelevanceThreshold)

	cacheTTL := time.Duration(config.Discovery.ATSCacheTTLDays) * 24 * time.Hour
	detector := ats.NewDetector(
		httpclient.NewProbeClient(),
		httpclient.NewCareersClient(),
		store.ATSCacheStorage(),
		cacheTTL,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var decisionMakers discovery.DecisionMakerLookup
	if config.Enrichment.EnableDecisionMakerLookup && !*skipDecisionMakers {
		finder, err := enrichment.NewDecisionMakerFinder(
			ctx,
			config.Enrichment.GeminiAPIKey,
			config.Enrichment.GeminiModel,
			config.Enrichment.GeminiBatchSize,
			config.Discovery.Profile,
			logger,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Decision-maker lookup unavailable, continuing without it")
		} else {
			decisionMakers = finder
		}
	}

	var emails discovery.EmailLookup
	if config.Enrichment.EnableEmailLookup && !*skipEmailLookup {
		finder, err := enrichment.NewEmailFinder(
			config.Enrichment.ApolloAPIKey,
			config.Enrichment.ApolloBatchSize,
			httpclient.NewDefaultHTTPClient(30*time.Second),
			logger,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Email lookup unavailable, continuing without it")
		} else {
			emails = finder
		}
	}

	orchestrator := discovery.NewOrchestrator(config, store, source, detector, scorer, decisionMakers, emails, logger)
	summary, err := orchestrator.Run(ctx, discovery.RunOptions{
		DryRun:             *dryRun,
		DateFilter:         dateFilter,
		SkipDecisionMakers: *skipDecisionMakers,
		SkipEmailLookup:    *skipEmailLookup,
	})

	printSummary(summary)

	if summary != nil && summary.Cancelled {
		fmt.Fprintln(os.Stderr, "leadhound: interrupted, partial progress committed")
		return exitInterrupted
	}
	if err != nil {
		logger.Error().Err(err).Msg("Run failed")
		return exitFatal
	}
	return exitOK
}

func printSummary(summary *discovery.RunSummary) {
	if summary == nil {
		return
	}
	fmt.Printf("\nRun %s (%s source)\n", summary.RunID, summary.Source)
	fmt.Printf("  Candidates:  %d delivered, %d skipped\n", summary.CandidatesDelivered, summary.CompaniesSkipped)
	fmt.Printf("  Companies:   %d processed\n", summary.CompaniesProcessed)
	fmt.Printf("  Jobs:        %d relevant (%d new, %d removed)\n", summary.JobsFound, summary.NewJobs, summary.RemovedJobs)
	if summary.DecisionMakers > 0 || summary.EmailsFound > 0 {
		fmt.Printf("  Contacts:    %d decision makers, %d emails\n", summary.DecisionMakers, summary.EmailsFound)
	}
	if len(summary.ByStatus) > 0 {
		fmt.Printf("  By status:   %s\n", formatCounts(summary.ByStatus))
	}
	if len(summary.ByProvider) > 0 {
		fmt.Printf("  By provider: %s\n", formatCounts(summary.ByProvider))
	}
	fmt.Printf("  Duration:    %s\n", summary.Duration.Round(time.Millisecond))
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	return strings.Join(parts, " ")
}

func cmdStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	paths := registerConfigFlag(fs)
	fs.Parse(args)

	config, logger, err := setup(*paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leadhound: %v\n", err)
		return exitFatal
	}
	store, err := openStore(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return exitFatal
	}
	defer store.Close()

	stats, err := store.StatisticsStorage().Statistics(context.Background(), config.Discovery.RelevanceThreshold)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load statistics")
		return exitFatal
	}

	fmt.Printf("Companies:     %d\n", stats.TotalCompanies)
	fmt.Printf("Active jobs:   %d\n", stats.ActiveJobs)
	fmt.Printf("Relevant jobs: %d\n", stats.RelevantJobs)
	if stats.LastRun != nil {
		fmt.Printf("Last run:      %s on %s (%d companies, %d new, %d removed)\n",
			stats.LastRun.RunID, stats.LastRun.RunDate,
			stats.LastRun.CompaniesChecked, stats.LastRun.NewJobs, stats.LastRun.RemovedJobs)
	}
	if len(stats.ByATS) > 0 {
		fmt.Printf("By ATS:        %s\n", formatCounts(stats.ByATS))
	}
	if len(stats.ByCategory) > 0 {
		fmt.Printf("By category:   %s\n", formatCounts(stats.ByCategory))
	}
	for _, change := range stats.RecentChanges {
		fmt.Printf("  [%s] %s at %s (%s)\n", change.ChangeType, change.JobTitle, change.CompanyName, change.ChangedAt)
	}
	return exitOK
}

func cmdExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	paths := registerConfigFlag(fs)
	format := fs.String("format", "csv", "Output format: csv or json")
	out := fs.String("out", "", "Output path (default stdout)")
	all := fs.Bool("all", false, "Include jobs below the relevance threshold")
	fs.Parse(args)

	config, logger, err := setup(*paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leadhound: %v\n", err)
		return exitFatal
	}
	store, err := openStore(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return exitFatal
	}
	defer store.Close()

	rows, err := store.ExportStorage().ExportRows(context.Background(), !*all, config.Discovery.RelevanceThreshold)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load export rows")
		return exitFatal
	}

	writer := os.Stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			logger.Error().Err(err).Str("path", *out).Msg("Failed to create output file")
			return exitFatal
		}
		defer file.Close()
		writer = file
	}

	switch *format {
	case "csv":
		err = export.WriteCSV(writer, rows)
	case "json":
		err = export.WriteJSON(writer, rows)
	default:
		fmt.Fprintf(os.Stderr, "leadhound: unknown format %q (want csv or json)\n", *format)
		return exitFatal
	}
	if err != nil {
		logger.Error().Err(err).Msg("Export failed")
		return exitFatal
	}

	if *out != "" {
		logger.Info().Int("rows", len(rows)).Str("path", *out).Msg("Export written")
	}
	return exitOK
}

func cmdUpload(args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	paths := registerConfigFlag(fs)
	dryRun := fs.Bool("dry-run", false, "Print the leads without uploading")
	apiKey := fs.String("api-key", "", "Upload API key (overrides config)")
	fs.Parse(args)

	config, logger, err := setup(*paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leadhound: %v\n", err)
		return exitFatal
	}
	store, err := openStore(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return exitFatal
	}
	defer store.Close()

	companies, err := store.CompanyStorage().CompaniesForUpload(context.Background(), config.Upload.MaxEmployeeCount)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to select companies for upload")
		return exitFatal
	}
	leads := export.BuildLeads(companies)
	if len(leads) == 0 {
		fmt.Println("No leads to upload.")
		return exitOK
	}
	fmt.Printf("Prepared %d leads from %d companies\n", len(leads), len(companies))

	if *dryRun {
		for i, lead := range leads {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(leads)-5)
				break
			}
			fmt.Printf("  - %s %s (%s) at %s\n", lead.FirstName, lead.LastName, lead.Title, lead.CompanyName)
		}
		return exitOK
	}

	key := *apiKey
	if key == "" {
		key = config.Upload.APIKey
	}
	uploader, err := export.NewUploader(config.Upload.VercelAPIURL, key, httpclient.NewDefaultHTTPClient(60*time.Second), logger)
	if err != nil {
		logger.Error().Err(err).Msg("Upload not configured")
		return exitInterrupted
	}

	upload := &models.LeadUpload{Location: config.Upload.Location, Leads: leads}
	if err := uploader.Upload(context.Background(), upload); err != nil {
		logger.Error().Err(err).Msg("Upload failed")
		return exitInterrupted
	}
	return exitOK
}

func cmdReset(args []string) int {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	paths := registerConfigFlag(fs)
	force := fs.Bool("force", false, "Skip the confirmation prompt")
	fs.Parse(args)

	config, logger, err := setup(*paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leadhound: %v\n", err)
		return exitFatal
	}

	if !*force {
		fmt.Print("Clear all seen-company markers? Every company will be reprocessed next run. [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return exitOK
		}
	}

	store, err := openStore(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return exitFatal
	}
	defer store.Close()

	removed, err := store.SeenCompanyStorage().Reset(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Reset failed")
		return exitFatal
	}
	fmt.Printf("Cleared %d seen-company markers.\n", removed)
	return exitOK
}
