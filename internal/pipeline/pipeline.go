// Package pipeline runs every configured account through login, scraping and
// writing, one account at a time, and fires the post-processing hook at the
// end. A failing account never stops the accounts after it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"screener-sync/internal/components/assert"
	"screener-sync/internal/components/chrono"
	"screener-sync/internal/components/telemetry"
	"screener-sync/internal/config"
	"screener-sync/internal/scrapers/screener"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("pipeline")
	meter  = otel.Meter("pipeline")
)

const (
	report_pipeline_account = "pipeline.account"
	report_pipeline_trigger = "pipeline.trigger"
	report_pipeline_rows    = "pipeline.rows"
)

type Authenticator interface {
	Login(ctx context.Context, creds screener.Credentials) (*screener.Session, error)
}

type Scraper interface {
	Scrape(ctx context.Context, session *screener.Session, account config.Account) screener.AccountResult
}

type Writer interface {
	Write(ctx context.Context, rangeA1 string, rows [][]string) error
}

type Trigger interface {
	Fire(ctx context.Context) (int, error)
}

// AccountReport is the outcome of one account.
type AccountReport struct {
	Username string
	Range    string
	LoggedIn bool
	Pages    int
	Rows     int
	Written  bool
	Err      error
}

// Outcome is a short label of how far the account got.
func (r AccountReport) Outcome() string {
	switch {
	case r.Written:
		return "written"
	case r.LoggedIn:
		return "write_failed"
	default:
		return "login_failed"
	}
}

// Pipeline processes accounts strictly in order.
type Pipeline struct {
	accounts    []config.Account
	auth        Authenticator
	scraper     Scraper
	writer      Writer
	trigger     Trigger
	settleDelay time.Duration

	rowsCounter     metric.Int64Counter
	accountsCounter metric.Int64Counter

	time chrono.TimeAPI
	tel  telemetry.API
}

type Options struct {
	Accounts []config.Account
	Auth     Authenticator
	Scraper  Scraper
	Writer   Writer
	// Trigger can be nil, in which case no hook is called.
	Trigger     Trigger
	SettleDelay time.Duration
}

func New(opts Options, time chrono.TimeAPI, tel telemetry.API) Pipeline {
	assert.NotNil(opts.Auth)
	assert.NotNil(opts.Scraper)
	assert.NotNil(opts.Writer)
	assert.NotNil(time)
	assert.NotNil(tel)

	rowsCounter, err := meter.Int64Counter(
		"screener_sync.rows",
		metric.WithDescription("Rows written to the sheet, separators included."),
	)
	if err != nil {
		panic(err)
	}
	accountsCounter, err := meter.Int64Counter(
		"screener_sync.accounts",
		metric.WithDescription("Accounts processed, by outcome."),
	)
	if err != nil {
		panic(err)
	}

	return Pipeline{
		accounts:    opts.Accounts,
		auth:        opts.Auth,
		scraper:     opts.Scraper,
		writer:      opts.Writer,
		trigger:     opts.Trigger,
		settleDelay: opts.SettleDelay,
		time:        time,
		tel:         telemetry.NewScopedAPI("pipeline", tel),

		rowsCounter:     rowsCounter,
		accountsCounter: accountsCounter,
	}
}

func (p Pipeline) runAccount(ctx context.Context, idx int, account config.Account) AccountReport {
	ctx, span := tracer.Start(ctx, "pipeline:runAccount")
	defer span.End()
	span.SetAttributes(
		attribute.Int("account", idx+1),
		attribute.String("range", account.Range),
	)

	report := AccountReport{
		Username: account.Username,
		Range:    account.Range,
	}

	p.tel.ReportInfo("scraping account", idx+1, account.Username)

	session, err := p.auth.Login(ctx, screener.Credentials{
		Username: account.Username,
		Password: account.Password,
	})
	if err != nil {
		p.tel.ReportWarning(report_pipeline_account, fmt.Errorf("login failed: %w", err), account.Username)
		report.Err = err
		return report
	}
	report.LoggedIn = true

	result := p.scraper.Scrape(ctx, session, account)
	rows := result.Values()
	report.Pages = result.Pages()
	report.Rows = len(rows)
	p.tel.ReportCount(report_pipeline_rows, int64(len(rows)))

	err = p.writer.Write(ctx, account.Range, rows)
	if err != nil {
		p.tel.ReportWarning(report_pipeline_account, fmt.Errorf("sheet update failed: %w", err), account.Username)
		report.Err = err
		return report
	}
	report.Written = true
	return report
}

// Run processes every account and then, after the settle delay, fires the
// trigger. It never fails, the outcome of each account is in the reports.
func (p Pipeline) Run(ctx context.Context) []AccountReport {
	reports := make([]AccountReport, 0, len(p.accounts))
	for i, account := range p.accounts {
		report := p.runAccount(ctx, i, account)
		p.accountsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", report.Outcome()),
		))
		if report.Written {
			p.rowsCounter.Add(ctx, int64(report.Rows))
		}
		reports = append(reports, report)
	}

	if p.trigger == nil {
		p.tel.ReportInfo("no trigger configured, skipping")
		return reports
	}

	p.tel.ReportInfo("triggering post-processing hook", p.settleDelay.String())
	err := p.time.Sleep(ctx, p.settleDelay)
	if err != nil {
		p.tel.ReportWarning(report_pipeline_trigger, err)
		return reports
	}
	status, err := p.trigger.Fire(ctx)
	if err != nil {
		p.tel.ReportWarning(report_pipeline_trigger, fmt.Errorf("trigger failed: %w", err), status)
		return reports
	}
	p.tel.ReportInfo("trigger succeeded", status)
	return reports
}
