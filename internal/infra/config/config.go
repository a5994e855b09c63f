package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"standup-audit-bot/internal/domain"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv  string `envconfig:"APP_ENV" default:"dev"`
	CheckTZ string `envconfig:"CHECK_TZ" default:"UTC"`

	Slack struct {
		Token       string        `envconfig:"SLACK_BOT_TOKEN"`
		HTTPTimeout time.Duration `envconfig:"SLACK_HTTP_TIMEOUT" default:"30s"`
	} `envconfig:""`

	Checkout struct {
		Label        string   `envconfig:"CHECKOUT_LABEL" default:"checking-out"`
		GroupID      string   `envconfig:"CHECKOUT_GROUP_ID"`
		ChannelID    string   `envconfig:"CHECKOUT_CHANNEL_ID"`
		AdminGroupID string   `envconfig:"CHECKOUT_ADMIN_GROUP_ID"`
		Cutoff       string   `envconfig:"CHECKOUT_CUTOFF" default:"23:59"`
		RunAt        string   `envconfig:"CHECKOUT_RUN_AT" default:"09:00"`
		DayOffset    int      `envconfig:"CHECKOUT_DAY_OFFSET" default:"-1"`
		Days         string   `envconfig:"CHECKOUT_DAYS" default:"*"`
		ExcludeIDs   []string `envconfig:"CHECKOUT_EXCLUDE_IDS"`
	} `envconfig:""`

	Checkin struct {
		Label        string   `envconfig:"CHECKIN_LABEL" default:"checking-in"`
		GroupID      string   `envconfig:"CHECKIN_GROUP_ID"`
		ChannelID    string   `envconfig:"CHECKIN_CHANNEL_ID"`
		AdminGroupID string   `envconfig:"CHECKIN_ADMIN_GROUP_ID"`
		Cutoff       string   `envconfig:"CHECKIN_CUTOFF" default:"10:00"`
		RunAt        string   `envconfig:"CHECKIN_RUN_AT" default:"10:05"`
		DayOffset    int      `envconfig:"CHECKIN_DAY_OFFSET" default:"0"`
		Days         string   `envconfig:"CHECKIN_DAYS" default:"*"`
		ExcludeIDs   []string `envconfig:"CHECKIN_EXCLUDE_IDS"`
	} `envconfig:""`

	RunOnBoot     bool   `envconfig:"RUN_ON_BOOT" default:"false"`
	TestChannelID string `envconfig:"TEST_CHANNEL_ID"`
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	NotifyDedup struct {
		Enabled bool          `envconfig:"NOTIFY_DEDUP_ENABLED" default:"false"`
		TTL     time.Duration `envconfig:"NOTIFY_DEDUP_TTL" default:"48h"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения. В dev-окружении сначала читается .env, если он есть.
func Load() (AppConfig, error) {
	if env := os.Getenv("APP_ENV"); env == "" || env == "dev" {
		_ = godotenv.Load()
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("не удалось загрузить конфиг: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate проверяет обязательные поля и формат значений.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Slack.Token == "" {
		errs = append(errs, errors.New("SLACK_BOT_TOKEN is required"))
	}
	if c.Checkout.GroupID == "" {
		errs = append(errs, errors.New("CHECKOUT_GROUP_ID is required"))
	}
	if c.Checkout.ChannelID == "" {
		errs = append(errs, errors.New("CHECKOUT_CHANNEL_ID is required"))
	}
	if c.CheckinEnabled() && c.Checkin.GroupID == "" {
		errs = append(errs, errors.New("CHECKIN_GROUP_ID is required when CHECKIN_CHANNEL_ID is set"))
	}
	if c.NotifyDedup.Enabled && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when NOTIFY_DEDUP_ENABLED is set"))
	}
	if _, err := c.Directions(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CheckinEnabled сообщает, настроено ли утреннее направление.
func (c AppConfig) CheckinEnabled() bool {
	return c.Checkin.ChannelID != ""
}

// Directions переводит конфиг в набор направлений проверки.
func (c AppConfig) Directions() ([]domain.Direction, error) {
	checkout, err := buildDirection("CHECKOUT", c.Checkout.Label, c.Checkout.GroupID, c.Checkout.ChannelID,
		c.Checkout.AdminGroupID, c.Checkout.Cutoff, c.Checkout.RunAt, c.Checkout.DayOffset, c.Checkout.Days, c.Checkout.ExcludeIDs)
	if err != nil {
		return nil, err
	}
	directions := []domain.Direction{checkout}
	if !c.CheckinEnabled() {
		return directions, nil
	}
	checkin, err := buildDirection("CHECKIN", c.Checkin.Label, c.Checkin.GroupID, c.Checkin.ChannelID,
		c.Checkin.AdminGroupID, c.Checkin.Cutoff, c.Checkin.RunAt, c.Checkin.DayOffset, c.Checkin.Days, c.Checkin.ExcludeIDs)
	if err != nil {
		return nil, err
	}
	if checkin.Label == checkout.Label {
		return nil, fmt.Errorf("CHECKIN_LABEL and CHECKOUT_LABEL must differ, both are %q", checkin.Label)
	}
	return append(directions, checkin), nil
}

func buildDirection(prefix, label, groupID, channelID, adminGroupID, cutoff, runAt string, dayOffset int, days string, exclude []string) (domain.Direction, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.Direction{}, fmt.Errorf("%s_LABEL must not be empty", prefix)
	}
	cutoffClock, err := domain.ParseClock(cutoff)
	if err != nil {
		return domain.Direction{}, fmt.Errorf("%s_CUTOFF: %w", prefix, err)
	}
	runAtClock, err := domain.ParseClock(runAt)
	if err != nil {
		return domain.Direction{}, fmt.Errorf("%s_RUN_AT: %w", prefix, err)
	}
	dir := domain.Direction{
		Label:        label,
		GroupID:      strings.TrimSpace(groupID),
		AdminGroupID: strings.TrimSpace(adminGroupID),
		ChannelID:    strings.TrimSpace(channelID),
		Cutoff:       cutoffClock,
		RunAt:        runAtClock,
		DayOffset:    dayOffset,
		Days:         strings.TrimSpace(days),
	}
	for _, id := range exclude {
		if id = strings.TrimSpace(id); id != "" {
			dir.Exclude = append(dir.Exclude, domain.Identity(id))
		}
	}
	return dir, nil
}
