package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type deadlineCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

type exportCleaner interface {
	Cleanup(ttl time.Duration) ([]string, error)
}

// MaintenanceConfig holds cron expressions. An empty expression disables that task.
type MaintenanceConfig struct {
	DeadlineSweep string
	ExportCleanup string
	ExportTTL     time.Duration
	TaskTimeout   time.Duration
}

// MaintenanceService runs periodic housekeeping on a cron schedule.
type MaintenanceService struct {
	jobs    deadlineCloser
	exports exportCleaner
	cfg     MaintenanceConfig
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewMaintenanceService registers the configured tasks. It fails on an unparsable cron expression.
func NewMaintenanceService(jobs deadlineCloser, exports exportCleaner, cfg MaintenanceConfig, logger *zap.Logger) (*MaintenanceService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = time.Minute
	}
	s := &MaintenanceService{
		jobs:    jobs,
		exports: exports,
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger:  logger,
	}
	if cfg.DeadlineSweep != "" && jobs != nil {
		if _, err := s.cron.AddFunc(cfg.DeadlineSweep, s.runDeadlineSweep); err != nil {
			return nil, fmt.Errorf("schedule deadline sweep: %w", err)
		}
	}
	if cfg.ExportCleanup != "" && exports != nil {
		if _, err := s.cron.AddFunc(cfg.ExportCleanup, s.runExportCleanup); err != nil {
			return nil, fmt.Errorf("schedule export cleanup: %w", err)
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *MaintenanceService) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", zap.Int("tasks", len(s.cron.Entries())))
}

// Stop halts scheduling and waits for running tasks or ctx, whichever ends first.
func (s *MaintenanceService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *MaintenanceService) runDeadlineSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TaskTimeout)
	defer cancel()
	closed, err := s.jobs.CloseExpired(ctx)
	if err != nil {
		s.logger.Warn("deadline sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("closed jobs past deadline", zap.Int("count", closed))
	}
}

func (s *MaintenanceService) runExportCleanup() {
	removed, err := s.exports.Cleanup(s.cfg.ExportTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("removed expired exports", zap.Int("count", len(removed)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}
