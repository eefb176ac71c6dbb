package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"PutScreener/internal/collector"
	"PutScreener/internal/export"
	"PutScreener/internal/model"
	"PutScreener/internal/notifier"

	"github.com/robfig/cron/v3"
)

// ChartRenderer draws a ResultSet to image files.
type ChartRenderer interface {
	Render(rs *model.ResultSet) (pngPath, pdfPath string, err error)
}

// Sender delivers a text message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Scheduler runs the screening pipeline once or on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Exporter  export.Exporter
	Renderer  ChartRenderer // nil disables charts
	Notifier  Sender        // nil disables Telegram
	Tickers   []string
	Out       io.Writer
	Ctx       context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler using 5-field cron expressions. A panic
// inside a scheduled run is logged and the schedule keeps going.
func NewScheduler(ctx context.Context, col *collector.Collector, exp export.Exporter, out io.Writer, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		Collector: col,
		Exporter:  exp,
		Tickers:   tickers,
		Out:       out,
		Ctx:       ctx,
	}
}

// Register schedules the pipeline on the given cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register screening task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one full screening pass: collect, print the summary, write
// the workbook, draw charts and notify. Output failures are logged and do not
// abort the later steps. Overlapping runs are serialised.
func (s *Scheduler) RunNow() *model.ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprint(s.Out, notifier.Banner("Options Analysis - Stock Price & Put Options Data"))
	rs := s.Collector.CollectAll(s.Ctx, s.Tickers)
	if s.Ctx.Err() != nil {
		log.Printf("[WARN] run %s cancelled, skipping outputs", rs.RunID)
		return rs
	}

	fmt.Fprint(s.Out, "\n"+notifier.FormatSummary(rs))

	if err := s.Exporter.Export(rs); err != nil {
		log.Printf("[ERROR] export workbook: %v", err)
	} else if p := s.Exporter.Path(); p != "" {
		fmt.Fprintf(s.Out, "\nResults saved to %s\n", p)
	}

	if s.Renderer != nil {
		if pngPath, pdfPath, err := s.Renderer.Render(rs); err != nil {
			log.Printf("[ERROR] render charts: %v", err)
		} else {
			fmt.Fprintf(s.Out, "Charts saved to %s and %s\n", pngPath, pdfPath)
		}
	}

	if s.Notifier != nil {
		if err := s.Notifier.Send(s.Ctx, notifier.FormatMessage(rs)); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}

	fmt.Fprint(s.Out, "\n"+notifier.Banner("Analysis Complete!"))
	return rs
}
