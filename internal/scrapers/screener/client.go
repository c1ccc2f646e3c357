// client.go contains the session handling for screener: creating an http
// client per account and logging it in.

package screener

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"screener-sync/internal/components/assert"
	"screener-sync/internal/components/chrono"
	"screener-sync/internal/components/httpdump"
	"screener-sync/internal/components/telemetry"
	"screener-sync/internal/config"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/screener")

const (
	report_client_login  = "client.login"
	report_client_fetch  = "client.fetch"
	report_client_scrape = "client.scrape"
)

// RetryPolicy is a fixed delay retry budget.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: config.DefaultMaxAttempts,
		Delay:       config.DefaultRetryDelayMs * time.Millisecond,
	}
}

type Options struct {
	Site      config.SiteConfig
	Retry     RetryPolicy
	PageDelay time.Duration
	// MaxColumns is the width plain (non classified) tables are cut down to.
	MaxColumns int
	// Dump receives a transcript of every http exchange when set.
	Dump httpdump.Output
}

// OptionsFromConfig converts the loaded configuration into client options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Site: cfg.Site,
		Retry: RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.RetryDelay(),
		},
		PageDelay:  cfg.PageDelay(),
		MaxColumns: DefaultMaxColumns,
	}
}

// Client logs into screener, fetches pages with retry and walks paginated
// screens. It holds no per-account state, that lives in Session.
type Client struct {
	site      config.SiteConfig
	retry     RetryPolicy
	pageDelay time.Duration
	parser    PageParser
	dump      httpdump.Output

	time chrono.TimeAPI
	tel  telemetry.API
}

func NewClient(opts Options, time chrono.TimeAPI, tel telemetry.API) Client {
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Site.BaseUrl)
	assert.Positive(opts.Retry.MaxAttempts)

	maxColumns := opts.MaxColumns
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}

	return Client{
		site:      opts.Site,
		retry:     opts.Retry,
		pageDelay: opts.PageDelay,
		parser: PageParser{
			SiteBase:   opts.Site.BaseUrl,
			MaxColumns: maxColumns,
		},
		dump: opts.Dump,
		time: time,
		tel:  telemetry.NewScopedAPI("screener_scraper", tel),
	}
}

// Credentials identify one screener account.
type Credentials struct {
	Username string
	Password string
}

// Session is the authenticated http context of one account. It must not be
// shared between accounts.
type Session struct {
	Username string
	http     *resty.Client
}

func (c Client) loginUrl() string {
	return c.site.BaseUrl + c.site.LoginPath
}

func (c Client) newSession(username string) (*Session, error) {
	baseUrl, err := url.Parse(c.site.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(c.site.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("User-Agent", c.site.UserAgent)
	httpClient.SetHeader("Referer", c.loginUrl())
	httpClient.SetHeader("Origin", c.site.BaseUrl)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if c.site.TimeoutSeconds > 0 {
		httpClient.SetTimeout(time.Duration(c.site.TimeoutSeconds) * time.Second)
	}

	telemetry.InstrumentResty(httpClient, "scrapers/screener/http", c.tel)
	if c.dump != nil {
		httpdump.Attach(httpClient, username, c.dump)
	}

	return &Session{
		Username: username,
		http:     httpClient,
	}, nil
}

// Login creates a fresh session and logs it in, any failure (including
// network errors) is returned as a *LoginFailure.
func (c Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) (*Session, error) {
		c.tel.ReportBroken(report_client_login, err, creds.Username)
		span.SetStatus(codes.Error, err.Error())
		return nil, &LoginFailure{Username: creds.Username, Err: err}
	}

	session, err := c.newSession(creds.Username)
	if err != nil {
		return loginError(fmt.Errorf("create session: %w", err))
	}

	res, err := session.http.R().
		SetContext(ctx).
		Get(c.site.LoginPath)
	if err != nil {
		return loginError(fmt.Errorf("login page request: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return loginError(fmt.Errorf("parse login page: %w", err))
	}

	csrfToken := doc.Find(fmt.Sprintf("input[name=%s]", c.site.CsrfField)).AttrOr("value", "")
	if csrfToken == "" {
		return loginError(ErrCSRFTokenMissing)
	}

	res, err = session.http.R().
		SetContext(ctx).
		SetHeader("Referer", c.loginUrl()).
		SetFormData(map[string]string{
			c.site.CsrfField: csrfToken,
			"username":       creds.Username,
			"password":       creds.Password,
			"next":           "/",
		}).
		Post(c.site.LoginPath)
	if err != nil {
		return loginError(fmt.Errorf("login request: %w", err))
	}

	if !strings.Contains(res.String(), c.site.LoginMarker) {
		c.tel.ReportWarning(report_client_login, ErrInvalidCredentials, creds.Username, res.Status())
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return nil, &LoginFailure{Username: creds.Username, Err: ErrInvalidCredentials}
	}

	c.tel.ReportInfo("login successful", creds.Username)
	return session, nil
}
