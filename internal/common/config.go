// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration, loaded as
// defaults -> TOML file(s) -> environment -> CLI flags.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Discovery  DiscoveryConfig  `toml:"discovery"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Search     SearchConfig     `toml:"search"`
	Upload     UploadConfig     `toml:"upload"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

type SQLiteConfig struct {
	Path          string `toml:"path" validate:"required"`
	CacheSizeMB   int    `toml:"cache_size_mb" validate:"gt=0"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms" validate:"gt=0"`
	WALMode       bool   `toml:"wal_mode"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DiscoveryConfig controls the pipeline itself.
type DiscoveryConfig struct {
	// Source selects the adapter: "csv", "github" or "serpapi".
	Source       string `toml:"source" validate:"oneof=csv github serpapi"`
	InputCSVPath string `toml:"input_csv_path"`
	GithubRepo   string `toml:"github_repo"`
	GithubToken  string `toml:"github_token"`

	// Profile selects the role family for relevance scoring:
	// "marketing", "it" or "sales".
	Profile            string  `toml:"profile" validate:"oneof=marketing it sales"`
	RelevanceThreshold float64 `toml:"relevance_threshold" validate:"gte=0,lte=100"`

	MaxJobs               int     `toml:"max_jobs" validate:"gt=0"`
	HTTPTimeoutSecs       float64 `toml:"http_timeout_secs" validate:"gt=0"`
	DelayBetweenRequests  float64 `toml:"delay_between_requests" validate:"gte=0"`
	DelayBetweenCompanies float64 `toml:"delay_between_companies" validate:"gte=0"`
	UserAgent             string  `toml:"user_agent"`
	ATSCacheTTLDays       int     `toml:"ats_cache_ttl_days" validate:"gt=0"`

	EnableJobVerification    bool    `toml:"enable_job_verification"`
	JobVerificationTimeout   float64 `toml:"job_verification_timeout" validate:"gt=0"`
	JobVerificationBatchSize int     `toml:"job_verification_batch_size" validate:"gt=0"`
}

// EnrichmentConfig gates the decision-maker and email passes.
type EnrichmentConfig struct {
	EnableDecisionMakerLookup bool   `toml:"enable_decision_maker_lookup"`
	GeminiAPIKey              string `toml:"gemini_api_key"`
	GeminiModel               string `toml:"gemini_model"`
	GeminiBatchSize           int    `toml:"gemini_batch_size" validate:"gt=0,lte=20"`

	EnableEmailLookup bool   `toml:"enable_email_lookup"`
	ApolloAPIKey      string `toml:"apollo_api_key"`
	ApolloBatchSize   int    `toml:"apollo_batch_size" validate:"gt=0,lte=10"`

	// TopCompanies bounds enrichment spend to the top N companies per
	// run, ranked per RankBy.
	TopCompanies int `toml:"top_companies" validate:"gt=0"`

	// RankBy orders enrichment selection: "recency" picks the most
	// recently updated companies, "urgency" the highest urgency scores.
	RankBy string `toml:"rank_by" validate:"oneof=recency urgency"`

	// EnrichLinkedInOnly includes linkedin_only companies in the
	// enrichment passes. Off by default.
	EnrichLinkedInOnly bool `toml:"enrich_linkedin_only"`
}

// SearchConfig configures the job aggregator source.
type SearchConfig struct {
	SerpAPIKey        string `toml:"serpapi_api_key"`
	Query             string `toml:"query"`
	MaxSearchesPerRun int    `toml:"max_searches_per_run" validate:"gt=0"`
	MetrosPerRun      int    `toml:"metros_per_run" validate:"gt=0"`
	StateFilePath     string `toml:"state_file_path"`
}

type UploadConfig struct {
	APIKey           string `toml:"api_key"`
	VercelAPIURL     string `toml:"vercel_api_url"`
	Location         string `toml:"location"`
	MaxEmployeeCount int    `toml:"max_employee_count" validate:"gt=0"`
}

// DefaultConfig returns the baseline configuration before any file,
// environment or flag overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/leadhound.db",
				CacheSizeMB:   64,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Discovery: DiscoveryConfig{
			Source:                   "github",
			GithubRepo:               "jobright-ai/2026-Marketing-New-Grad",
			Profile:                  "marketing",
			RelevanceThreshold:       60.0,
			MaxJobs:                  100,
			HTTPTimeoutSecs:          15.0,
			DelayBetweenRequests:     1.0,
			DelayBetweenCompanies:    2.0,
			UserAgent:                "leadhound/1.0",
			ATSCacheTTLDays:          7,
			JobVerificationTimeout:   5.0,
			JobVerificationBatchSize: 20,
		},
		Enrichment: EnrichmentConfig{
			EnableDecisionMakerLookup: true,
			GeminiModel:               "gemini-2.5-flash",
			GeminiBatchSize:           5,
			EnableEmailLookup:         true,
			ApolloBatchSize:           10,
			TopCompanies:              10,
			RankBy:                    "recency",
		},
		Search: SearchConfig{
			Query:             "marketing agency hiring",
			MaxSearchesPerRun: 2,
			MetrosPerRun:      2,
			StateFilePath:     "./data/metro_rotation.json",
		},
		Upload: UploadConfig{
			Location:         "United States",
			MaxEmployeeCount: 100,
		},
	}
}

// LoadFromFiles loads configuration from the given TOML files in order
// (later files override earlier ones), then applies environment
// overrides, then validates.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides layers recognized environment variables on top of
// file values. Environment wins over file, CLI flags win over both.
func applyEnvOverrides(config *Config) {
	setString(&config.Search.SerpAPIKey, "SERPAPI_API_KEY")
	setString(&config.Enrichment.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&config.Enrichment.GeminiModel, "GEMINI_MODEL")
	setInt(&config.Enrichment.GeminiBatchSize, "GEMINI_BATCH_SIZE")
	setString(&config.Enrichment.ApolloAPIKey, "APOLLO_API_KEY")
	setInt(&config.Enrichment.ApolloBatchSize, "APOLLO_BATCH_SIZE")
	setString(&config.Upload.APIKey, "LEADS_UPLOAD_API_KEY")
	setString(&config.Upload.VercelAPIURL, "VERCEL_API_URL")
	setInt(&config.Upload.MaxEmployeeCount, "MAX_EMPLOYEE_COUNT")
	setInt(&config.Search.MaxSearchesPerRun, "MAX_SEARCHES_PER_RUN")
	setInt(&config.Search.MetrosPerRun, "METROS_PER_RUN")
	setFloat(&config.Discovery.RelevanceThreshold, "RELEVANCE_THRESHOLD")
	setFloat(&config.Discovery.HTTPTimeoutSecs, "HTTP_TIMEOUT")
	setFloat(&config.Discovery.DelayBetweenRequests, "DELAY_BETWEEN_REQUESTS")
	setFloat(&config.Discovery.DelayBetweenCompanies, "DELAY_BETWEEN_COMPANIES")
	setBool(&config.Enrichment.EnableDecisionMakerLookup, "ENABLE_DECISION_MAKER_LOOKUP")
	setBool(&config.Enrichment.EnableEmailLookup, "ENABLE_EMAIL_LOOKUP")
	setBool(&config.Discovery.EnableJobVerification, "ENABLE_JOB_VERIFICATION")
	setFloat(&config.Discovery.JobVerificationTimeout, "JOB_VERIFICATION_TIMEOUT")
	setInt(&config.Discovery.JobVerificationBatchSize, "JOB_VERIFICATION_BATCH_SIZE")
	setString(&config.Discovery.GithubToken, "GITHUB_TOKEN")
	setString(&config.Storage.SQLite.Path, "LEADHOUND_DB_PATH")
	setString(&config.Logging.Level, "LEADHOUND_LOG_LEVEL")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setFloat(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func setBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*target = true
		case "0", "false", "no", "off":
			*target = false
		}
	}
}

// Validate checks struct tags plus the cross-field rules tags cannot
// express.
func Validate(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Discovery.Source == "csv" && config.Discovery.InputCSVPath == "" {
		return fmt.Errorf("invalid configuration: discovery.input_csv_path is required when source is csv")
	}
	if config.Discovery.Source == "serpapi" && config.Search.SerpAPIKey == "" {
		return fmt.Errorf("invalid configuration: SERPAPI_API_KEY is required when source is serpapi")
	}

	return nil
}
