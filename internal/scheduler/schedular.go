package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type WeatherFetcher interface {
	FetchWeatherData(ctx context.Context, cities []string) error
	Configured() bool
}

type SessionPruner interface {
	Prune(ctx context.Context) (int, error)
}

// Scheduler runs the background jobs: cache warm-up for the default cities
// and pruning of idle chat sessions. Overlapping runs of a job are skipped.
type Scheduler struct {
	cron          *cron.Cron
	fetcher       WeatherFetcher
	pruner        SessionPruner
	logger        *zap.Logger
	cities        []string
	interval      time.Duration
	pruneInterval time.Duration
	fetchTimeout  time.Duration
	mu            sync.Mutex
	running       bool
	lastRun       time.Time
	lastPrune     time.Time
	fetchID       cron.EntryID
	pruneID       cron.EntryID
}

func NewScheduler(fetcher WeatherFetcher, pruner SessionPruner, cities []string, interval, pruneInterval time.Duration, logger *zap.Logger) *Scheduler {
	cronLogger := zapCronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		fetcher:       fetcher,
		pruner:        pruner,
		logger:        logger,
		cities:        cities,
		interval:      interval,
		pruneInterval: pruneInterval,
		fetchTimeout:  60 * time.Second,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	warmUp := s.fetcher != nil && s.fetcher.Configured() && len(s.cities) > 0 && s.interval > 0
	if warmUp {
		s.fetchID = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.runFetch))
	}
	if s.pruner != nil && s.pruneInterval > 0 {
		s.pruneID = s.cron.Schedule(cron.Every(s.pruneInterval), cron.FuncJob(s.runPrune))
	}
	s.mu.Unlock()

	if !warmUp {
		s.logger.Info("Weather warm-up disabled",
			zap.Int("cities", len(s.cities)),
			zap.Duration("interval", s.interval))
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("prune_interval", s.pruneInterval))

	// Run immediately on start
	if warmUp {
		go s.runFetch()
	}
}

func (s *Scheduler) runFetch() {
	s.mu.Lock()
	s.lastRun = time.Now()
	cities := append([]string(nil), s.cities...)
	s.mu.Unlock()

	startTime := time.Now()
	s.logger.Info("Starting scheduled weather fetch",
		zap.Time("start_time", startTime),
		zap.Strings("cities", cities))

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	if err := s.fetcher.FetchWeatherData(ctx, cities); err != nil {
		s.logger.Error("Scheduled weather fetch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
	} else {
		s.logger.Info("Scheduled weather fetch completed",
			zap.Duration("duration", time.Since(startTime)))
	}
}

func (s *Scheduler) runPrune() {
	s.mu.Lock()
	s.lastPrune = time.Now()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	removed, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("Session prune failed", zap.Error(err))
		return
	}
	s.logger.Debug("Session prune completed", zap.Int("removed", removed))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// ForceRun starts an out-of-band warm-up. It reports false when there is
// nothing to fetch with.
func (s *Scheduler) ForceRun() bool {
	if s.fetcher == nil || !s.fetcher.Configured() {
		return false
	}
	s.logger.Info("Manually triggering weather fetch")
	go s.runFetch()
	return true
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":        s.running,
		"interval":       s.interval.String(),
		"prune_interval": s.pruneInterval.String(),
		"last_run":       s.lastRun,
		"last_prune":     s.lastPrune,
		"cities":         s.cities,
	}
	if s.fetchID != 0 {
		status["next_run"] = s.cron.Entry(s.fetchID).Next
	}
	if s.pruneID != 0 {
		status["next_prune"] = s.cron.Entry(s.pruneID).Next
	}
	return status
}

func (s *Scheduler) UpdateCities(cities []string) {
	s.mu.Lock()
	s.cities = append([]string(nil), cities...)
	s.mu.Unlock()

	s.logger.Info("Scheduler cities updated", zap.Strings("cities", cities))
}

// zapCronLogger routes cron's own logging through zap.
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
