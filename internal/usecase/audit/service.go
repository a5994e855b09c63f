package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"standup-audit-bot/internal/domain"
	"standup-audit-bot/internal/infra/metrics"
)

// Stage — состояние конвейера проверки.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageWindowComputed  Stage = "window_computed"
	StageTargetsResolved Stage = "targets_resolved"
	StageHistoryFetched  Stage = "history_fetched"
	StageReconciled      Stage = "reconciled"
	StageNamesResolved   Stage = "names_resolved"
	StagePublished       Stage = "published"
	StageFailed          Stage = "failed"
)

const (
	defaultMarkerTTL = 48 * time.Hour
	markerKeyPrefix  = "audit:notified"
)

// StageError сообщает, на каком переходе упала проверка.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("стадия %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RunOptions задаёт параметры одного запуска.
type RunOptions struct {
	// ChannelOverride перенаправляет уведомление (но не чтение истории) в другой канал.
	ChannelOverride string
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMentionStrategy подменяет правило извлечения автора.
func WithMentionStrategy(strategy MentionStrategy) Option {
	return func(s *Service) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithMarker включает отметки об отправленных уведомлениях.
func WithMarker(marker domain.NotifyMarker, ttl time.Duration) Option {
	return func(s *Service) {
		s.marker = marker
		if ttl > 0 {
			s.markerTTL = ttl
		}
	}
}

// WithRunID подменяет генератор идентификаторов запусков.
func WithRunID(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// Service выполняет проверку одного направления от окна до публикации.
type Service struct {
	client    domain.ChatClient
	loc       *time.Location
	log       zerolog.Logger
	now       func() time.Time
	strategy  MentionStrategy
	marker    domain.NotifyMarker
	markerTTL time.Duration
	newRunID  func() string

	window    *WindowCalculator
	members   *MembershipResolver
	extractor *Extractor
	names     *NameResolver
	publisher *Publisher
}

// NewService собирает конвейер проверки поверх клиента чата.
func NewService(client domain.ChatClient, loc *time.Location, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		client:    client,
		loc:       loc,
		log:       log,
		now:       time.Now,
		strategy:  FirstMention{},
		markerTTL: defaultMarkerTTL,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.window = NewWindowCalculator(loc, s.now)
	s.members = NewMembershipResolver(client)
	s.extractor = NewExtractor(client, s.strategy)
	s.names = NewNameResolver(client)
	s.publisher = NewPublisher(client)
	return s
}

// Run выполняет проверку направления. Стадии идут строго по порядку;
// при ошибке любой стадии ничего не публикуется.
func (s *Service) Run(ctx context.Context, dir domain.Direction, opts RunOptions) (domain.CheckReport, error) {
	started := time.Now()
	destination := dir.ChannelID
	if opts.ChannelOverride != "" {
		destination = opts.ChannelOverride
	}
	report := domain.CheckReport{
		RunID:       s.newRunID(),
		Label:       dir.Label,
		Channel:     dir.ChannelID,
		Destination: destination,
		Stage:       string(StageIdle),
	}
	runLog := s.log.With().
		Str("run_id", report.RunID).
		Str("check", dir.Label).
		Str("channel", dir.ChannelID).
		Str("destination", destination).
		Logger()

	fail := func(next Stage, err error) (domain.CheckReport, error) {
		report.Stage = string(StageFailed)
		metrics.ObserveCheck(dir.Label, metrics.StatusFailed, started, 0)
		runLog.Error().Err(err).Str("stage", string(next)).Msg("audit: проверка прервана")
		return report, &StageError{Stage: next, Err: err}
	}

	window := s.window.Compute(dir.Cutoff, dir.DayOffset)
	report.ReportDate = window.ReportDate
	report.WindowStart = window.Start
	report.WindowEnd = window.End
	report.Stage = string(StageWindowComputed)
	runLog = runLog.With().
		Str("report_date", window.ReportDate).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Logger()
	runLog.Debug().Msg("audit: окно вычислено")

	targets, err := s.members.ResolveTargets(ctx, dir.GroupID, dir.Exclude)
	if err != nil {
		return fail(StageTargetsResolved, err)
	}
	report.Targets = len(targets)
	report.Stage = string(StageTargetsResolved)

	messages, err := s.extractor.FetchHistory(ctx, dir.ChannelID, window)
	if err != nil {
		return fail(StageHistoryFetched, err)
	}
	report.Stage = string(StageHistoryFetched)
	runLog.Debug().Int("messages", len(messages)).Int("targets", len(targets)).Msg("audit: история загружена")

	submitted := s.extractor.Submitters(messages, targets)
	missing := Reconcile(targets, submitted)
	report.Submitted = len(submitted)
	report.Missing = identitiesToStrings(missing)
	report.Stage = string(StageReconciled)

	names, err := s.names.BuildNameMap(ctx)
	if err != nil {
		return fail(StageNamesResolved, err)
	}
	report.Stage = string(StageNamesResolved)

	notification := Notification{
		ChannelID:    destination,
		Label:        dir.Label,
		ReportDate:   window.ReportDate,
		AdminMention: AdminMention(dir.AdminGroupID),
		Missing:      missing,
		Names:        names,
	}
	published, err := s.publish(ctx, notification, &report)
	if err != nil {
		return fail(StagePublished, err)
	}

	report.Stage = string(StagePublished)
	if !published {
		report.Skipped = true
		metrics.ObserveCheck(dir.Label, metrics.StatusSkipped, started, len(missing))
		runLog.Info().Msg("audit: уведомление за это окно уже отправлялось, пропускаем")
		return report, nil
	}
	metrics.ObserveCheck(dir.Label, metrics.StatusSuccess, started, len(missing))
	runLog.Info().
		Int("targets", report.Targets).
		Int("submitted", report.Submitted).
		Int("missing", len(missing)).
		Str("parent_ts", report.ParentTS).
		Dur("took", time.Since(started)).
		Msg("audit: проверка завершена")
	return report, nil
}

func (s *Service) publish(ctx context.Context, n Notification, report *domain.CheckReport) (bool, error) {
	send := func() error {
		ts, err := s.publisher.Publish(ctx, n)
		report.ParentTS = ts
		return err
	}
	if s.marker == nil {
		return true, send()
	}
	return s.marker.Once(ctx, MarkerKey(n.Label, n.ChannelID, n.ReportDate), s.markerTTL, send)
}

// MarkerKey формирует ключ отметки об уведомлении для направления, канала и даты.
func MarkerKey(label, channelID, reportDate string) string {
	return strings.Join([]string{markerKeyPrefix, label, channelID, reportDate}, ":")
}

func identitiesToStrings(ids []domain.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
