package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PutScreener/internal/chart"
	"PutScreener/internal/collector"
	"PutScreener/internal/config"
	"PutScreener/internal/export"
	"PutScreener/internal/notifier"
	"PutScreener/internal/scheduler"

	"github.com/spf13/cobra"
)

// Set via -ldflags.
var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "screener",
	Short:         "Cash-secured put screener for a fixed set of US tickers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().String("config", defaultPath, "config file path")

	runCmd.Flags().Bool("no-chart", false, "skip chart rendering")
	runCmd.Flags().Bool("dry-run", false, "print the summary without writing the workbook")
	scheduleCmd.Flags().Bool("no-chart", false, "skip chart rendering")
	scheduleCmd.Flags().Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "run once before waiting for the schedule")

	rootCmd.AddCommand(runCmd, scheduleCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screener %s\n", version)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screen all tickers once and write the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		noChart, _ := cmd.Flags().GetBool("no-chart")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] unexpected error: %v", r)
			}
		}()

		sched := buildScheduler(ctx, cfg, noChart)
		if dryRun {
			sched.Exporter = export.NewNoopExporter()
		}
		sched.RunNow()
		if ctx.Err() != nil {
			fmt.Println("\nProcess interrupted by user.")
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Screen all tickers on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Schedule.Cron == "" {
			log.Println("[ERROR] schedule.cron is not set")
			return fmt.Errorf("schedule.cron is not set")
		}
		noChart, _ := cmd.Flags().GetBool("no-chart")
		runOnStart, _ := cmd.Flags().GetBool("run-on-start")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := buildScheduler(ctx, cfg, noChart)
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			log.Printf("[FATAL] %v", err)
			return err
		}
		sched.Start()
		defer sched.Stop()

		if runOnStart {
			log.Println("[INFO] run-on-start enabled, executing now")
			go sched.RunNow()
		}

		log.Printf("[INFO] screener scheduled on %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
		<-ctx.Done()
		fmt.Println("\nProcess interrupted by user.")
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("[FATAL] load config: %v", err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return nil, err
	}
	return cfg, nil
}

func buildScheduler(ctx context.Context, cfg *config.Config, noChart bool) *scheduler.Scheduler {
	timeout := time.Duration(cfg.DataSource.TimeoutSec) * time.Second
	fetcher := collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy, timeout)
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.BaseURL)

	col := collector.NewCollector(fetcher, cfg.DataSource.Lookback, cfg.DataSource.Concurrency)
	sched := scheduler.NewScheduler(ctx, col, export.NewExcelExporter(cfg.Output.ExcelPath), os.Stdout, cfg.Tickers())

	if cfg.ChartEnabled() && !noChart {
		sched.Renderer = chart.NewRenderer(chart.Options{
			Dir:      cfg.Output.ChartDir,
			Prefix:   cfg.Output.ChartPrefix,
			WidthIn:  cfg.Chart.WidthIn,
			HeightIn: cfg.Chart.HeightIn,
			DPI:      cfg.Chart.DPI,
		})
	}
	if cfg.TelegramEnabled() {
		sched.Notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return sched
}
