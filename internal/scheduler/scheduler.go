package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/aquabot/internal/logger"
	"github.com/pfrederiksen/aquabot/internal/metrics"
	"github.com/pfrederiksen/aquabot/internal/notifier"
	"github.com/pfrederiksen/aquabot/internal/reading"
	"github.com/pfrederiksen/aquabot/internal/scraper"
	"github.com/pfrederiksen/aquabot/internal/storage"
)

// Extractor fetches the current reading
type Extractor interface {
	FetchReading(ctx context.Context) (reading.Reading, error)
}

// Store persists the notification state between runs
type Store interface {
	LoadState() (*storage.State, error)
	SaveState(state *storage.State) error
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d and returns ctx.Err() if ctx is done first
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outcome is the result of a single tick
type Outcome int

const (
	OutcomeWaiting Outcome = iota
	OutcomeSatisfied
	OutcomeFetchFailed
	OutcomeStale
	OutcomeNotifyFailed
	OutcomeNotified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWaiting:
		return "waiting"
	case OutcomeSatisfied:
		return "satisfied"
	case OutcomeFetchFailed:
		return metrics.ResultFetchFailed
	case OutcomeStale:
		return metrics.ResultStale
	case OutcomeNotifyFailed:
		return metrics.ResultNotifyFailed
	case OutcomeNotified:
		return metrics.ResultNotified
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Config holds the scheduling policy
type Config struct {
	ThresholdMinutes int
	PollInterval     time.Duration
	Location         *time.Location
	SiteName         string
	RequireFresh     bool // skip readings identical to the last posted one
}

// Scheduler owns the daily gate and drives fetch and notify
type Scheduler struct {
	gate      *DailyGate
	extractor Extractor
	notifier  notifier.Notifier
	store     Store
	log       *logger.Logger
	metrics   *metrics.Recorder
	clock     Clock
	sleep     SleepFunc

	location     *time.Location
	siteName     string
	requireFresh bool

	lastReading *reading.Reading
	failures    int
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithSleep replaces the sleep between ticks
func WithSleep(f SleepFunc) Option {
	return func(s *Scheduler) { s.sleep = f }
}

// WithStore persists the gate and the last posted reading
func WithStore(store Store) Option {
	return func(s *Scheduler) { s.store = store }
}

// WithMetrics records attempt results
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a Scheduler. When a store is configured its state seeds the gate.
func New(cfg Config, extractor Extractor, n notifier.Notifier, log *logger.Logger, opts ...Option) (*Scheduler, error) {
	gate, err := NewDailyGate(cfg.ThresholdMinutes, cfg.PollInterval)
	if err != nil {
		return nil, err
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if n == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	s := &Scheduler{
		gate:         gate,
		extractor:    extractor,
		notifier:     n,
		log:          log,
		clock:        systemClock{},
		sleep:        Sleep,
		location:     location,
		siteName:     cfg.SiteName,
		requireFresh: cfg.RequireFresh,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store != nil {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// restore seeds the gate from the persisted state
func (s *Scheduler) restore() error {
	state, err := s.store.LoadState()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	last, err := ParseDate(state.LastSatisfiedDate)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	s.gate.Commit(last)
	s.lastReading = state.LastReading

	s.log.Info("Restored state", logger.Fields{
		"last_satisfied_date": s.gate.LastSatisfied().String(),
	})
	return nil
}

// Gate returns the scheduler's daily gate
func (s *Scheduler) Gate() *DailyGate {
	return s.gate
}

// FailuresSinceSuccess returns the number of failed attempts since the last delivered notification
func (s *Scheduler) FailuresSinceSuccess() int {
	return s.failures
}

// Run ticks every poll interval until ctx is cancelled and returns ctx's error
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Starting daily update scheduler", logger.Fields{
		"threshold_minutes":   s.gate.ThresholdMinutes(),
		"poll_interval":       s.gate.PollInterval().String(),
		"timezone":            s.location.String(),
		"last_satisfied_date": s.gate.LastSatisfied().String(),
	})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.Tick(ctx)

		s.log.Info("Sleeping", logger.Fields{
			"seconds": int(s.gate.PollInterval().Seconds()),
		})
		if err := s.sleep(ctx, s.gate.PollInterval()); err != nil {
			s.log.Info("Scheduler stopping", nil)
			return err
		}
	}
}

// Tick evaluates the gate once and, if it is open, makes one fetch and notify attempt
func (s *Scheduler) Tick(ctx context.Context) Outcome {
	now := s.clock.Now().In(s.location)
	today := DateOf(now)
	state := s.gate.State(now)

	s.log.Debug("Checking gate", logger.Fields{
		"current_time":        now.Format("15:04"),
		"todays_date":         today.String(),
		"last_satisfied_date": s.gate.LastSatisfied().String(),
		"state":               state.String(),
	})

	if !s.gate.Open(now) {
		if state == Satisfied {
			return OutcomeSatisfied
		}
		return OutcomeWaiting
	}

	s.log.Info("Fetching water levels", logger.Fields{
		"todays_date": today.String(),
		"attempt":     s.failures + 1,
	})

	start := time.Now()
	r, err := s.extractor.FetchReading(ctx)
	s.metrics.FetchDuration(time.Since(start))
	if err != nil {
		s.fail(OutcomeFetchFailed)
		s.log.Error("Fetching water levels failed", s.fetchFields(err), err)
		return OutcomeFetchFailed
	}

	if s.requireFresh && s.lastReading != nil && r.Equal(*s.lastReading) {
		s.fail(OutcomeStale)
		s.log.Warn("Reading unchanged since last notification", logger.Fields{
			"today":                  r.Today,
			"yesterday":              r.Yesterday,
			"ten_day_average":        r.TenDayAverage,
			"failures_since_success": s.failures,
		})
		return OutcomeStale
	}

	message := reading.FormatMessage(s.siteName, r)
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.fail(OutcomeNotifyFailed)
		s.log.Error("Unsuccessfully posted", s.deliveryFields(message, err), err)
		return OutcomeNotifyFailed
	}

	s.commit(today, now, r, message)
	return OutcomeNotified
}

// fail counts an unsuccessful attempt; the gate is left untouched
func (s *Scheduler) fail(outcome Outcome) {
	s.failures++
	s.metrics.Attempt(outcome.String())
	s.metrics.FailuresSinceSuccess(s.failures)
}

// commit is the only place the gate advances
func (s *Scheduler) commit(today Date, now time.Time, r reading.Reading, message string) {
	s.gate.Commit(today)
	s.lastReading = &r
	s.failures = 0

	s.metrics.Attempt(OutcomeNotified.String())
	s.metrics.FailuresSinceSuccess(0)
	s.metrics.Success(now)

	s.log.Info("Successfully posted", logger.Fields{
		"message":             message,
		"last_satisfied_date": s.gate.LastSatisfied().String(),
	})

	if s.store == nil {
		return
	}

	state := &storage.State{
		LastSatisfiedDate: s.gate.LastSatisfied().String(),
		LastReading:       &r,
		LastMessage:       message,
	}
	if err := s.store.SaveState(state); err != nil {
		// The in-memory gate already advanced, so this process will not post again today
		s.log.Error("Saving state failed", logger.Fields{
			"last_satisfied_date": state.LastSatisfiedDate,
		}, err)
	}
}

func (s *Scheduler) fetchFields(err error) logger.Fields {
	fields := logger.Fields{
		"failures_since_success": s.failures,
	}

	var fetchErr *scraper.FetchError
	if errors.As(err, &fetchErr) {
		fields["url"] = fetchErr.URL
		if fetchErr.StatusCode != 0 {
			fields["status_code"] = fetchErr.StatusCode
		}
	}
	if errors.Is(err, scraper.ErrUnexpectedShape) {
		fields["reason"] = "unexpected_shape"
	}

	return fields
}

func (s *Scheduler) deliveryFields(message string, err error) logger.Fields {
	fields := logger.Fields{
		"message":                message,
		"failures_since_success": s.failures,
	}

	var deliveryErr *notifier.DeliveryError
	if errors.As(err, &deliveryErr) && deliveryErr.StatusCode != 0 {
		fields["status_code"] = deliveryErr.StatusCode
	}

	return fields
}
