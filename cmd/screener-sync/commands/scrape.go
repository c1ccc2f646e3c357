package commands

import (
	"fmt"
	"os"

	"screener-sync/internal/components/chrono"
	"screener-sync/internal/components/httpdump"
	"screener-sync/internal/components/serviceutil"
	"screener-sync/internal/components/telemetry"
	"screener-sync/internal/scrapers/screener"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeAccount int
	scrapeRows    int
	scrapeDumpDir string
)

func init() {
	scrapeCmd.Flags().IntVarP(&scrapeAccount, "account", "a", 1, "The 1-based index of the account to scrape.")
	scrapeCmd.Flags().IntVar(&scrapeRows, "rows", 20, "The amount of rows to print, 0 prints everything.")
	scrapeCmd.Flags().StringVar(&scrapeDumpDir, "dump-http", "", "Write a transcript of every http exchange into this directory.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--account <n>] [--rows <n>] [--dump-http <dir>]",
	Short: "Scrapes a single account and prints the result without touching the sheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		if scrapeAccount < 1 || scrapeAccount > len(cfg.Accounts) {
			serviceutil.Fatal(
				"invalid account",
				fmt.Errorf("account %d not in 1..%d", scrapeAccount, len(cfg.Accounts)),
			)
		}
		account := cfg.Accounts[scrapeAccount-1]

		tel := telemetry.SlogAPI{}
		opts := screener.OptionsFromConfig(cfg)
		if scrapeDumpDir != "" {
			dump, err := httpdump.NewDirOutput(scrapeDumpDir)
			if err != nil {
				serviceutil.Fatal("failed to create dump directory", err)
			}
			opts.Dump = dump
		}
		client := screener.NewClient(opts, chrono.NewStandardTime(), tel)
		session, err := client.Login(ctx, screener.Credentials{
			Username: account.Username,
			Password: account.Password,
		})
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}

		result := client.Scrape(ctx, session, account)
		renderValues(result.Values(), scrapeRows)
		renderBlocks(result.Blocks)
		tel.ReportInfo("scrape finished", account.Username, result.Pages())
	},
}

func renderValues(values [][]string, limit int) {
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	for _, row := range values {
		out := make(table.Row, len(row))
		for i, cell := range row {
			out[i] = cell
		}
		t.AppendRow(out)
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderBlocks(blocks []screener.Block) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Page", "Rows", "Columns"})
	for _, b := range blocks {
		t.AppendRow(table.Row{b.Page, len(b.Table.Rows), b.Table.Width()})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
