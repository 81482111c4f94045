package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"bankdash/internal/aggregate"
	"bankdash/internal/upload"
)

// Data sources and theme stores understood by the backend factory.
const (
	SourceMemory   = "memory"
	SourceJSONFile = "jsonfile"
	SourceSQLite   = "sqlite"
	SourceSheets   = "sheets"
)

var (
	validSources      = []string{SourceMemory, SourceJSONFile, SourceSQLite, SourceSheets}
	validThemeStores  = []string{"memory", "sqlite"}
	validOrders       = []string{string(aggregate.OrderFirstSeen), string(aggregate.OrderTotalDesc)}
	validScopes       = []string{string(aggregate.ScopeAll), string(aggregate.ScopeDebits)}
	maxUploadCeiling  = int64(100 << 20)
	maxSimulatedDelay = time.Minute
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Data supplier
	DataSource   string
	DataDir      string
	SQLiteDBPath string
	ThemeStore   string

	// Simulated latency of the memory supplier
	FetchDelay        time.Duration
	SummaryFetchDelay time.Duration

	// AMQP, optional
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	WorkerPrefetch int

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleTransactionsRange  string
	GoogleSummaryRange       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Upload
	UploadDelay           time.Duration
	UploadMaxBytes        int64
	UploadExtensions      []string
	UploadCaseInsensitive bool

	// Aggregation
	FillEmptyMonths bool
	CategoryOrder   string
	CategoryScope   string

	// HTTP hardening and caching
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataSource:   getEnv("DATA_SOURCE", SourceMemory),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bankdash.db"),
		ThemeStore:   getEnv("THEME_STORE", "memory"),

		FetchDelay:        getEnvDuration("FETCH_DELAY", 1000*time.Millisecond),
		SummaryFetchDelay: getEnvDuration("SUMMARY_FETCH_DELAY", 800*time.Millisecond),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "bankdash"),
		AMQPQueue:      getEnv("AMQP_QUEUE", "statement_uploads"),
		WorkerPrefetch: getEnvInt("WORKER_PREFETCH", 10),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTransactionsRange:  getEnv("GOOGLE_TRANSACTIONS_RANGE", "Transactions!A:F"),
		GoogleSummaryRange:       getEnv("GOOGLE_SUMMARY_RANGE", "Summary!A:B"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		UploadDelay:           getEnvDuration("UPLOAD_DELAY", upload.DefaultDelay),
		UploadMaxBytes:        getEnvInt64("UPLOAD_MAX_BYTES", 10<<20),
		UploadExtensions:      getEnvList("UPLOAD_EXTENSIONS", upload.DefaultExtensions),
		UploadCaseInsensitive: getEnvBool("UPLOAD_CASE_INSENSITIVE", false),

		FillEmptyMonths: getEnvBool("FILL_EMPTY_MONTHS", false),
		CategoryOrder:   getEnv("CATEGORY_ORDER", string(aggregate.OrderFirstSeen)),
		CategoryScope:   getEnv("CATEGORY_SCOPE", string(aggregate.ScopeAll)),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CacheSize:          getEnvInt("CACHE_SIZE", 64),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
	}
}

// AggregateOptions returns the aggregation settings.
func (c *Config) AggregateOptions() aggregate.Options {
	return aggregate.Options{
		Order:    aggregate.Order(c.CategoryOrder),
		Scope:    aggregate.Scope(c.CategoryScope),
		FillGaps: c.FillEmptyMonths,
	}
}

// UsesSQLite reports whether any component needs the database.
func (c *Config) UsesSQLite() bool {
	return c.DataSource == SourceSQLite || c.ThemeStore == "sqlite"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validSources, c.DataSource) {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}
	if !slices.Contains(validThemeStores, c.ThemeStore) {
		errors = append(errors, fmt.Sprintf("invalid theme store '%s': must be one of %v", c.ThemeStore, validThemeStores))
	}

	if c.UsesSQLite() {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when sqlite is used")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataSource == SourceJSONFile {
		if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory does not exist: %s", c.DataDir))
		}
	}

	if c.DataSource == SourceSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleTransactionsRange == "" || c.GoogleSummaryRange == "" {
			errors = append(errors, "Google Sheets ranges cannot be empty when using sheets source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.WorkerPrefetch < 1 {
			errors = append(errors, fmt.Sprintf("invalid worker prefetch %d: must be at least 1", c.WorkerPrefetch))
		}
	}

	for name, d := range map[string]time.Duration{
		"fetch delay":         c.FetchDelay,
		"summary fetch delay": c.SummaryFetchDelay,
		"upload delay":        c.UploadDelay,
	} {
		if d < 0 || d > maxSimulatedDelay {
			errors = append(errors, fmt.Sprintf("invalid %s %v: must be between 0 and %v", name, d, maxSimulatedDelay))
		}
	}

	if c.UploadMaxBytes < 1 {
		errors = append(errors, fmt.Sprintf("invalid upload max bytes %d: must be at least 1", c.UploadMaxBytes))
	} else if c.UploadMaxBytes > maxUploadCeiling {
		errors = append(errors, fmt.Sprintf("invalid upload max bytes %d: must be at most %d", c.UploadMaxBytes, maxUploadCeiling))
	}
	if len(c.UploadExtensions) == 0 {
		errors = append(errors, "at least one upload extension is required")
	}

	if !slices.Contains(validOrders, c.CategoryOrder) {
		errors = append(errors, fmt.Sprintf("invalid category order '%s': must be one of %v", c.CategoryOrder, validOrders))
	}
	if !slices.Contains(validScopes, c.CategoryScope) {
		errors = append(errors, fmt.Sprintf("invalid category scope '%s': must be one of %v", c.CategoryScope, validScopes))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
