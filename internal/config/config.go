package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the evidex API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	SearchService SearchServiceConfig `yaml:"search_service"`
	Search        SearchConfig        `yaml:"search"`
	Storage       StorageConfig       `yaml:"storage"`
	Cache         CacheConfig         `yaml:"cache"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Budget        BudgetConfig        `yaml:"budget"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
	// RateLimitRPS caps requests per second on the search endpoints.
	// Zero disables rate limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// SearchServiceConfig holds search index service connection settings.
type SearchServiceConfig struct {
	Endpoint        string `yaml:"endpoint"`
	APIKey          string `yaml:"api_key"`
	APIVersion      string `yaml:"api_version"`
	HTMLIndex       string `yaml:"html_index"`
	PDFIndex        string `yaml:"pdf_index"`
	QueryTimeoutSec int    `yaml:"query_timeout_sec"`
}

// SearchConfig tunes the search pipelines.
type SearchConfig struct {
	HTMLTop         int    `yaml:"html_top"`
	PDFTop          int    `yaml:"pdf_top"`
	EmptyQueryTop   int    `yaml:"empty_query_top"`
	CrossRefHits    int    `yaml:"crossref_hits"`
	CrossRefURLs    int    `yaml:"crossref_urls"`
	ContextChars    int    `yaml:"context_chars"`
	PDFContextChars int    `yaml:"pdf_context_chars"`
	PDFSearchTop    int    `yaml:"pdf_search_top"`
	SemanticTop     int    `yaml:"semantic_top"`
	SemanticConfig  string `yaml:"semantic_configuration"`
	VectorField     string `yaml:"vector_field"`
	// ExcludedPDFFragments drops matching pdf_urls entries before exposure
	// and cross-referencing.
	ExcludedPDFFragments []string `yaml:"excluded_pdf_fragments"`
	// URLRewrites map stored blob URLs to their public site form.
	URLRewrites []URLRewrite `yaml:"url_rewrites"`
}

// URLRewrite maps a stored URL prefix to its public replacement.
type URLRewrite struct {
	Prefix      string `yaml:"prefix"`
	Replacement string `yaml:"replacement"`
}

// ContainersConfig names the blob containers of the document lifecycle.
type ContainersConfig struct {
	HTML        string `yaml:"html"`
	HTMLMaster  string `yaml:"html_master"`
	HTMLArchive string `yaml:"html_archive"`
	JSON        string `yaml:"json"`
	JSONDone    string `yaml:"json_done"`
	JSONArchive string `yaml:"json_archive"`
	PDF         string `yaml:"pdf"`
	PDFMaster   string `yaml:"pdf_master"`
	PDFArchive  string `yaml:"pdf_archive"`
}

// StorageConfig holds object store settings.
type StorageConfig struct {
	Endpoint   string           `yaml:"endpoint"`
	SASToken   string           `yaml:"sas_token"`
	APIVersion string           `yaml:"api_version"`
	PublicBase string           `yaml:"public_base"`
	SiteBase   string           `yaml:"site_base"`
	Containers ContainersConfig `yaml:"containers"`
}

// CacheConfig holds redis connection settings. Addrs empty disables the
// cache (no embedding reuse, in-memory-only budgets).
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpenAIConfig holds model provider settings.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	Dimensions     int    `yaml:"dimensions"`
}

// BudgetConfig holds provider token budget settings. Zero limits mean
// unlimited.
type BudgetConfig struct {
	EmbeddingDailyTokens  int64  `yaml:"embedding_daily_tokens"`
	ExtractionDailyTokens int64  `yaml:"extraction_daily_tokens"`
	MonthlyTokens         int64  `yaml:"monthly_tokens"`
	Action                string `yaml:"action"` // "reject" | "warn" (default)
	DailyTTLHours         int    `yaml:"daily_ttl_hours"`
	MonthTTLHours         int    `yaml:"month_ttl_hours"`
}

// QueryTimeout returns the per-call index timeout as a duration.
func (c SearchServiceConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := Path(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.SearchService.APIVersion == "" {
		c.SearchService.APIVersion = "2023-11-01"
	}
	if c.SearchService.HTMLIndex == "" {
		c.SearchService.HTMLIndex = "html-files-index"
	}
	if c.SearchService.PDFIndex == "" {
		c.SearchService.PDFIndex = "pdf-files-index"
	}
	if c.SearchService.QueryTimeoutSec <= 0 {
		c.SearchService.QueryTimeoutSec = 5
	}
	if c.Search.HTMLTop <= 0 {
		c.Search.HTMLTop = 150
	}
	if c.Search.PDFTop <= 0 {
		c.Search.PDFTop = 20
	}
	if c.Search.EmptyQueryTop <= 0 {
		c.Search.EmptyQueryTop = 1000
	}
	if c.Search.CrossRefHits <= 0 {
		c.Search.CrossRefHits = 10
	}
	if c.Search.CrossRefURLs <= 0 {
		c.Search.CrossRefURLs = 2
	}
	if c.Search.ContextChars <= 0 {
		c.Search.ContextChars = 150
	}
	if c.Search.PDFContextChars <= 0 {
		c.Search.PDFContextChars = 300
	}
	if c.Search.PDFSearchTop <= 0 {
		c.Search.PDFSearchTop = 200
	}
	if c.Search.SemanticTop <= 0 {
		c.Search.SemanticTop = 50
	}
	if c.Search.ExcludedPDFFragments == nil {
		c.Search.ExcludedPDFFragments = []string{
			"Whistleblower_Rights_Employees_OGC",
			"Whistleblower_Rights_and_Remedies_Contractors_Grantees_OGC",
		}
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "evidex"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.Budget.DailyTTLHours <= 0 {
		c.Budget.DailyTTLHours = 48
	}
	if c.Budget.MonthTTLHours <= 0 {
		c.Budget.MonthTTLHours = 62 * 24
	}
	c.Storage.Containers.applyDefaults()
	if c.Storage.PublicBase == "" {
		c.Storage.PublicBase = "https://americorpevidencestore.blob.core.windows.net"
	}
	if c.Storage.SiteBase == "" {
		c.Storage.SiteBase = "https://americorps.gov"
	}
	if len(c.Search.URLRewrites) == 0 {
		c.Search.URLRewrites = []URLRewrite{{
			Prefix:      c.Storage.PublicBase + "/" + c.Storage.Containers.PDF + "/",
			Replacement: c.Storage.SiteBase + "/sites/default/files/evidenceexchange/",
		}}
	}
}

func (c *ContainersConfig) applyDefaults() {
	if c.HTML == "" {
		c.HTML = "htmlcontent"
	}
	if c.HTMLMaster == "" {
		c.HTMLMaster = "htmlcontent-master"
	}
	if c.HTMLArchive == "" {
		c.HTMLArchive = "htmlcontent-archieve"
	}
	if c.JSON == "" {
		c.JSON = "html-jsons"
	}
	if c.JSONDone == "" {
		c.JSONDone = "successful-jsons"
	}
	if c.JSONArchive == "" {
		c.JSONArchive = "jsonfiles-archieve"
	}
	if c.PDF == "" {
		c.PDF = "evidencefiles"
	}
	if c.PDFMaster == "" {
		c.PDFMaster = "evidencefiles-master"
	}
	if c.PDFArchive == "" {
		c.PDFArchive = "evidencefiles-archieve"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.SearchService.Endpoint == "" {
		return fmt.Errorf("search_service.endpoint is required")
	}
	switch c.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("budget.action must be \"warn\" or \"reject\", got %q", c.Budget.Action)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative, got %v", c.HTTP.RateLimitRPS)
	}
	return nil
}

// Path locates the config file for an environment. Exported so the
// fsnotify watcher can follow the same file Load read.
func Path(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
