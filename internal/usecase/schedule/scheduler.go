package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"standup-audit-bot/internal/domain"
)

// CronSpec строит выражение cron для ежедневного запуска в runAt.
// days задаёт поле дней недели ("*", "1-5", "MON-FRI").
func CronSpec(runAt domain.Clock, days string) (string, error) {
	days = strings.TrimSpace(days)
	if days == "" {
		days = "*"
	}
	spec := fmt.Sprintf("%d %d * * %s", runAt.Minute, runAt.Hour, days)
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("расписание %q: %w", spec, err)
	}
	return spec, nil
}

// Scheduler запускает задачи по расписанию в заданном часовом поясе.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.RWMutex
	ctx     context.Context
	entries map[string]cron.EntryID
}

// NewScheduler создаёт планировщик. Паника в задаче логируется и не роняет процесс,
// а повторный запуск ещё не завершившейся задачи пропускается.
func NewScheduler(loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log:     log,
		ctx:     context.Background(),
		entries: make(map[string]cron.EntryID),
	}
}

// Register добавляет ежедневную задачу под меткой.
func (s *Scheduler) Register(label string, runAt domain.Clock, days string, task func(ctx context.Context)) error {
	spec, err := CronSpec(runAt, days)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[label]; ok {
		return fmt.Errorf("задача %q уже зарегистрирована", label)
	}
	id, err := s.cron.AddFunc(spec, func() {
		s.log.Info().Str("check", label).Msg("schedule: запуск по расписанию")
		task(s.context())
	})
	if err != nil {
		return fmt.Errorf("регистрация %q: %w", label, err)
	}
	s.entries[label] = id
	s.log.Info().Str("check", label).Str("spec", spec).Msg("schedule: задача зарегистрирована")
	return nil
}

// Start запускает планировщик. ctx передаётся в задачи.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	labels := make([]string, 0, len(s.entries))
	for label := range s.entries {
		labels = append(labels, label)
	}
	s.mu.Unlock()

	s.cron.Start()
	for _, label := range labels {
		if next, ok := s.Next(label); ok {
			s.log.Info().Str("check", label).Time("next_run", next).Msg("schedule: следующий запуск")
		}
	}
}

// Next возвращает время следующего запуска задачи.
func (s *Scheduler) Next(label string) (time.Time, bool) {
	s.mu.RLock()
	id, ok := s.entries[label]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() || entry.Next.IsZero() {
		return time.Time{}, false
	}
	return entry.Next, true
}

// Stop останавливает планировщик и ждёт завершения запущенных задач, но не дольше ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
