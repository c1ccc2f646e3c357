package commands

import (
	"os"

	"screener-sync/internal/components/chrono"
	"screener-sync/internal/components/serviceutil"
	"screener-sync/internal/components/telemetry"
	"screener-sync/internal/pipeline"
	"screener-sync/internal/sheets"
	"screener-sync/internal/trigger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [-c config.json5] [-v]",
	Short: "Scrapes every configured account, writes the sheet and fires the trigger.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		tel := telemetry.SlogAPI{}

		credentials, err := sheets.CredentialsFromEnv(cfg.Sheet.CredentialsEnv)
		if err != nil {
			serviceutil.Fatal("failed to read google credentials", err)
		}
		values, err := sheets.NewGoogleValues(ctx, credentials)
		if err != nil {
			serviceutil.Fatal("failed to authorize google sheets", err)
		}
		tel.ReportInfo("google sheets authorization complete")

		spreadsheetId, err := sheets.ParseSpreadsheetID(cfg.Sheet.Spreadsheet)
		if err != nil {
			serviceutil.Fatal("failed to resolve spreadsheet", err)
		}

		var hook pipeline.Trigger
		if cfg.Trigger.Url != "" {
			hook = trigger.NewClient(cfg.Trigger.Url, cfg.Timeout(), tel)
		}

		client := newScreenerClient(cfg, tel)
		p := pipeline.New(pipeline.Options{
			Accounts:    cfg.Accounts,
			Auth:        client,
			Scraper:     client,
			Writer:      sheets.NewWriter(values, spreadsheetId, cfg.Sheet.Tab, tel),
			Trigger:     hook,
			SettleDelay: cfg.SettleDelay(),
		}, chrono.NewStandardTime(), tel)

		reports := p.Run(ctx)
		renderReports(reports)
	},
}

func renderReports(reports []pipeline.AccountReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Account", "Range", "Outcome", "Pages", "Rows", "Error"})

	for i, r := range reports {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		t.AppendRow(table.Row{
			i + 1,
			r.Username,
			r.Range,
			r.Outcome(),
			r.Pages,
			r.Rows,
			errText,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
