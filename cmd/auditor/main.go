package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"standup-audit-bot/internal/adapters/slackclient"
	"standup-audit-bot/internal/infra/cache"
	"standup-audit-bot/internal/infra/config"
	httpinfra "standup-audit-bot/internal/infra/http"
	applog "standup-audit-bot/internal/infra/log"
	"standup-audit-bot/internal/infra/metrics"
	"standup-audit-bot/internal/usecase/audit"
	"standup-audit-bot/internal/usecase/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := applog.NewLogger(os.Getenv("APP_ENV"), "auditor")
		logger.Fatal().Err(err).Msg("auditor: некорректная конфигурация")
	}
	logger := applog.NewLogger(cfg.AppEnv, "auditor")

	loc, err := schedule.LoadLocation(cfg.CheckTZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.CheckTZ).Msg("auditor: некорректный часовой пояс")
	}
	directions, err := cfg.Directions()
	if err != nil {
		logger.Fatal().Err(err).Msg("auditor: некорректные направления")
	}
	for _, dir := range directions {
		if dir.AdminGroupID == "" {
			logger.Warn().Str("check", dir.Label).Msg("auditor: группа администраторов не задана, уведомление уйдёт без упоминания")
		}
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := slackclient.New(cfg.Slack.Token, slackclient.WithTimeout(cfg.Slack.HTTPTimeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("auditor: не удалось создать клиент Slack")
	}

	opts := []audit.Option{}
	if cfg.NotifyDedup.Enabled {
		redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("auditor: нет подключения к Redis")
		}
		defer redisClient.Close()
		opts = append(opts, audit.WithMarker(cache.NewRedis(redisClient), cfg.NotifyDedup.TTL))
		logger.Info().Dur("ttl", cfg.NotifyDedup.TTL).Msg("auditor: отметки об уведомлениях включены")
	}

	service := audit.NewService(client, loc, logger.With().Str("component", "audit").Logger(), opts...)
	dispatcher, err := audit.NewDispatcher(service, directions, cfg.TestChannelID, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("auditor: не удалось собрать диспетчер")
	}

	scheduler := schedule.NewScheduler(loc, logger.With().Str("component", "schedule").Logger())
	for _, dir := range directions {
		label := dir.Label
		task := func(ctx context.Context) {
			_ = dispatcher.RunScheduled(ctx, label)
		}
		if err := scheduler.Register(label, dir.RunAt, dir.Days, task); err != nil {
			logger.Fatal().Err(err).Str("check", label).Msg("auditor: не удалось зарегистрировать проверку")
		}
	}
	// Запущенные проверки доводятся до конца при остановке, Stop ждёт их ограниченное время.
	scheduler.Start(context.WithoutCancel(ctx))

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger(), cfg.HTTPAddr, dispatcher)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("auditor: HTTP сервер остановлен")
		}
	}()

	if cfg.RunOnBoot {
		go func() {
			err := dispatcher.RunAllTest(ctx)
			switch {
			case errors.Is(err, audit.ErrNoTestChannel):
				logger.Warn().Msg("auditor: RUN_ON_BOOT включён, но TEST_CHANNEL_ID не задан, запуск пропущен")
			case err != nil:
				logger.Error().Err(err).Msg("auditor: запуск при старте завершился ошибкой")
			default:
				logger.Info().Msg("auditor: запуск при старте завершён")
			}
		}()
	}

	logger.Info().Str("tz", loc.String()).Int("checks", len(directions)).Msg("auditor: старт")
	<-ctx.Done()
	logger.Info().Msg("auditor: остановка")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("auditor: не дождались завершения проверок")
	}
	_ = server.Shutdown(shutdownCtx)
}
