package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"screener-sync/internal/components/configutil"
	"screener-sync/internal/sheets"
)

// Account is one screener login and the screen it scrapes into its own range
// of the destination sheet.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Url is the screen url with a `{page}` placeholder for the page number.
	Url   string `json:"url"`
	Range string `json:"range"`
	// Classify enables the Classification and Hyperlink columns.
	Classify bool `json:"add_classification"`
}

type SiteConfig struct {
	BaseUrl        string `json:"base_url"`
	LoginPath      string `json:"login_path"`
	CsrfField      string `json:"csrf_field"`
	LoginMarker    string `json:"login_marker"`
	NextPageMarker string `json:"next_page_marker"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type RetryConfig struct {
	MaxAttempts int `json:"max_attempts"`
	DelayMs     int `json:"delay_ms"`
}

type SheetConfig struct {
	// Spreadsheet is either the full url of the document or its id.
	Spreadsheet    string `json:"spreadsheet"`
	Tab            string `json:"tab"`
	CredentialsEnv string `json:"credentials_env"`
}

type TriggerConfig struct {
	Url           string `json:"url"`
	SettleDelayMs int    `json:"settle_delay_ms"`
}

type Config struct {
	Site        SiteConfig    `json:"site"`
	Retry       RetryConfig   `json:"retry"`
	PageDelayMs int           `json:"page_delay_ms"`
	Sheet       SheetConfig   `json:"sheet"`
	Trigger     TriggerConfig `json:"trigger"`
	Accounts    []Account     `json:"accounts"`
}

const (
	DefaultBaseUrl        = "https://www.screener.in"
	DefaultLoginPath      = "/login/"
	DefaultCsrfField      = "csrfmiddlewaretoken"
	DefaultLoginMarker    = "Core Watchlist"
	DefaultNextPageMarker = "Next"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeoutSeconds = 30
	DefaultMaxAttempts    = 10
	DefaultRetryDelayMs   = 1000
	DefaultPageDelayMs    = 900
	DefaultSettleDelayMs  = 10000
	DefaultTab            = "Sheet2"
	DefaultCredentialsEnv = "SERVICE_ACCOUNT_JSON"
)

// Load reads the config at path (merged with its .local override), fills in
// defaults and validates it.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.ApplyDefaults()
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func orDefault[T comparable](value *T, def T) {
	var zero T
	if *value == zero {
		*value = def
	}
}

func (c *Config) ApplyDefaults() {
	orDefault(&c.Site.BaseUrl, DefaultBaseUrl)
	orDefault(&c.Site.LoginPath, DefaultLoginPath)
	orDefault(&c.Site.CsrfField, DefaultCsrfField)
	orDefault(&c.Site.LoginMarker, DefaultLoginMarker)
	orDefault(&c.Site.NextPageMarker, DefaultNextPageMarker)
	orDefault(&c.Site.UserAgent, DefaultUserAgent)
	orDefault(&c.Site.TimeoutSeconds, DefaultTimeoutSeconds)
	orDefault(&c.Retry.MaxAttempts, DefaultMaxAttempts)
	orDefault(&c.Retry.DelayMs, DefaultRetryDelayMs)
	orDefault(&c.PageDelayMs, DefaultPageDelayMs)
	orDefault(&c.Sheet.Tab, DefaultTab)
	orDefault(&c.Sheet.CredentialsEnv, DefaultCredentialsEnv)
	orDefault(&c.Trigger.SettleDelayMs, DefaultSettleDelayMs)
	c.Site.BaseUrl = strings.TrimSuffix(c.Site.BaseUrl, "/")
}

// HasPagePlaceholder returns true if the url template can be given a page number.
func HasPagePlaceholder(template string) bool {
	return strings.Contains(template, "{page}") || strings.Contains(template, "{}")
}

// Validate checks every account is usable and that no two accounts write to
// overlapping ranges.
func (c Config) Validate() error {
	var errlist []error
	if c.Sheet.Spreadsheet == "" {
		errlist = append(errlist, fmt.Errorf("sheet.spreadsheet is required"))
	}
	if c.Retry.MaxAttempts < 1 {
		errlist = append(errlist, fmt.Errorf("retry.max_attempts must be at least 1"))
	}

	ranges := make([]sheets.Range, len(c.Accounts))
	for i, acc := range c.Accounts {
		if acc.Username == "" {
			errlist = append(errlist, fmt.Errorf("accounts[%d]: username is required", i))
		}
		if !HasPagePlaceholder(acc.Url) {
			errlist = append(errlist, fmt.Errorf("accounts[%d]: url %q has no {page} placeholder", i, acc.Url))
		}
		r, err := sheets.ParseRange(acc.Range)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("accounts[%d]: %w", i, err))
			continue
		}
		ranges[i] = r
		for j := 0; j < i; j++ {
			if ranges[j] != (sheets.Range{}) && r.Overlaps(ranges[j]) {
				errlist = append(errlist, fmt.Errorf(
					"accounts[%d]: range %s overlaps range %s of accounts[%d]",
					i, acc.Range, c.Accounts[j].Range, j,
				))
			}
		}
	}
	return errors.Join(errlist...)
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelayMs) * time.Millisecond
}

func (c Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Trigger.SettleDelayMs) * time.Millisecond
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Site.TimeoutSeconds) * time.Second
}
