package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"standup-audit-bot/internal/domain"
)

var (
	// ErrNoTestChannel возвращается, если тестовый канал для ручного запуска не настроен.
	ErrNoTestChannel = errors.New("test channel is not configured")
	// ErrUnknownDirection возвращается для незнакомой метки направления.
	ErrUnknownDirection = errors.New("unknown check direction")
)

// Runner выполняет одну проверку.
type Runner interface {
	Run(ctx context.Context, dir domain.Direction, opts RunOptions) (domain.CheckReport, error)
}

// Dispatcher хранит настроенные направления и запускает их по метке.
type Dispatcher struct {
	runner      Runner
	directions  map[string]domain.Direction
	order       []string
	testChannel string
	log         zerolog.Logger
}

// NewDispatcher создаёт диспетчер. Направления с одинаковой меткой не допускаются.
func NewDispatcher(runner Runner, directions []domain.Direction, testChannel string, log zerolog.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		runner:      runner,
		directions:  make(map[string]domain.Direction, len(directions)),
		testChannel: testChannel,
		log:         log,
	}
	for _, dir := range directions {
		if _, ok := d.directions[dir.Label]; ok {
			return nil, fmt.Errorf("повторяющаяся метка направления %q", dir.Label)
		}
		d.directions[dir.Label] = dir
		d.order = append(d.order, dir.Label)
	}
	return d, nil
}

// Directions возвращает направления в порядке настройки.
func (d *Dispatcher) Directions() []domain.Direction {
	out := make([]domain.Direction, 0, len(d.order))
	for _, label := range d.order {
		out = append(out, d.directions[label])
	}
	return out
}

// RunScheduled запускает проверку по расписанию с публикацией в рабочий канал.
// Ошибка уже залогирована конвейером, повтор будет при следующем запуске по расписанию.
func (d *Dispatcher) RunScheduled(ctx context.Context, label string) error {
	dir, ok := d.directions[label]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDirection, label)
	}
	_, err := d.runner.Run(ctx, dir, RunOptions{})
	return err
}

// RunTest запускает проверку с публикацией в тестовый канал.
func (d *Dispatcher) RunTest(ctx context.Context, label string) (domain.CheckReport, error) {
	dir, ok := d.directions[label]
	if !ok {
		return domain.CheckReport{}, fmt.Errorf("%w: %s", ErrUnknownDirection, label)
	}
	if d.testChannel == "" {
		return domain.CheckReport{}, ErrNoTestChannel
	}
	return d.runner.Run(ctx, dir, RunOptions{ChannelOverride: d.testChannel})
}

// RunAllTest параллельно запускает все направления в тестовый канал и ждёт их завершения.
// Без тестового канала ничего не запускает и возвращает ErrNoTestChannel.
func (d *Dispatcher) RunAllTest(ctx context.Context) error {
	if d.testChannel == "" {
		return ErrNoTestChannel
	}
	d.log.Info().Strs("checks", d.order).Str("destination", d.testChannel).Msg("audit: тестовый запуск всех проверок")
	var g errgroup.Group
	for _, label := range d.order {
		label := label
		g.Go(func() error {
			_, err := d.RunTest(ctx, label)
			return err
		})
	}
	return g.Wait()
}
