package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"screener-sync/internal/components/chrono"
	"screener-sync/internal/components/serviceutil"
	"screener-sync/internal/components/telemetry"
	"screener-sync/internal/config"
	"screener-sync/internal/scrapers/screener"

	"github.com/spf13/cobra"
)

const perfStatsInterval = 30 * time.Second

var (
	configPath string
	verbose    bool
	exporters  telemetry.Exporters
)

var rootCmd = &cobra.Command{
	Use:   "screener-sync",
	Short: "screener-sync scrapes screener.in screens into a google sheet.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		var err error
		exporters, err = telemetry.SetupFromEnv(cmd.Context(), "screener-sync")
		if err != nil {
			slog.Warn("telemetry export disabled", "err", err)
		}
		if exporters.MeterProvider != nil {
			telemetry.InstrumentPerfStats(cmd.Context(), perfStatsInterval)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.SlogAPI{}.ReportDebug("perf stats", telemetry.SamplePerf(cmd.Context()))

		err := exporters.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "The config file to read, a .local override next to it is merged in.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func newScreenerClient(cfg config.Config, tel telemetry.API) screener.Client {
	return screener.NewClient(
		screener.OptionsFromConfig(cfg),
		chrono.NewStandardTime(),
		tel,
	)
}
