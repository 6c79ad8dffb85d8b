package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/grantscraper/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingest and expire on the configured cron specs until interrupted",
	Long: `Schedule runs a full ingestion on schedule.ingest and an expired-deadline
sweep on schedule.expire, both evaluated in the configured timezone. Jobs never
overlap: a job that fires while the other runs waits for it, and a job that
fires while its own previous run is still active is skipped.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "run one ingestion immediately before waiting for the schedule")
	rootCmd.AddCommand(scheduleCmd)
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct{ log logger.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.log.Debug(msg, kvFields(kv)...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.log.Error(msg, append(kvFields(kv), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.String(fmt.Sprint(kv[i]), fmt.Sprint(kv[i+1])))
	}
	return fields
}

// serialJobs runs named jobs one at a time. A job that fires while a
// different job runs waits its turn; a job that fires while an earlier run
// of itself is still running or waiting is skipped.
type serialJobs struct {
	log logger.Logger
	run sync.Mutex

	mu      sync.Mutex
	pending map[string]bool
}

func newSerialJobs(log logger.Logger) *serialJobs {
	return &serialJobs{log: log, pending: make(map[string]bool)}
}

func (s *serialJobs) wrap(name string, job func() error) func() {
	return func() {
		s.mu.Lock()
		if s.pending[name] {
			s.mu.Unlock()
			s.log.Warn("job skipped, previous run still active", logger.String("job", name))
			return
		}
		s.pending[name] = true
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.pending, name)
			s.mu.Unlock()
		}()

		s.run.Lock()
		defer s.run.Unlock()
		if err := job(); err != nil {
			s.log.Error("job failed", logger.String("job", name), logger.Error(err))
		}
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := newSerialJobs(a.log)
	exclusive := func(name string, job func(context.Context) error) func() {
		return jobs.wrap(name, func() error { return job(ctx) })
	}

	ingestJob := func(ctx context.Context) error {
		p, err := a.pipeline(nil, store)
		if err != nil {
			return err
		}
		_, err = p.RunIngestion(ctx)
		return err
	}
	expireJob := func(ctx context.Context) error {
		p, err := a.corpusPipeline(store)
		if err != nil {
			return err
		}
		_, _, err = p.RetireExpired(ctx)
		return err
	}

	cl := cronLogger{log: a.log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	if _, err := c.AddFunc(a.cfg.Schedule.Ingest, exclusive("ingest", ingestJob)); err != nil {
		return fmt.Errorf("schedule.ingest %q: %w", a.cfg.Schedule.Ingest, err)
	}
	if a.cfg.Schedule.Expire != "" {
		if _, err := c.AddFunc(a.cfg.Schedule.Expire, exclusive("expire", expireJob)); err != nil {
			return fmt.Errorf("schedule.expire %q: %w", a.cfg.Schedule.Expire, err)
		}
	}

	if now, _ := cmd.Flags().GetBool("now"); now {
		exclusive("ingest", ingestJob)()
	}

	c.Start()
	a.log.Info("scheduler started",
		logger.String("ingest", a.cfg.Schedule.Ingest),
		logger.String("expire", a.cfg.Schedule.Expire),
		logger.String("timezone", loc.String()),
	)

	<-ctx.Done()
	a.log.Info("stopping scheduler")
	<-c.Stop().Done()
	return nil
}
