package audit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"standup-audit-bot/internal/domain"
)

type recordingRunner struct {
	mu    sync.Mutex
	calls []runCall
	err   error
}

type runCall struct {
	Label   string
	Options RunOptions
}

func (r *recordingRunner) Run(_ context.Context, dir domain.Direction, opts RunOptions) (domain.CheckReport, error) {
	r.mu.Lock()
	r.calls = append(r.calls, runCall{Label: dir.Label, Options: opts})
	r.mu.Unlock()
	return domain.CheckReport{Label: dir.Label, Destination: opts.ChannelOverride}, r.err
}

func twoDirections() []domain.Direction {
	return []domain.Direction{
		{Label: "checking-out", ChannelID: "C1"},
		{Label: "checking-in", ChannelID: "C2"},
	}
}

func TestNewDispatcherRejectsDuplicateLabels(t *testing.T) {
	dirs := append(twoDirections(), domain.Direction{Label: "checking-in"})
	if _, err := NewDispatcher(&recordingRunner{}, dirs, "", zerolog.Nop()); err == nil {
		t.Fatal("ожидали ошибку для повторяющейся метки")
	}
}

func TestRunScheduledUsesProductionChannel(t *testing.T) {
	runner := &recordingRunner{}
	d, err := NewDispatcher(runner, twoDirections(), "C_TEST", zerolog.Nop())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if err := d.RunScheduled(context.Background(), "checking-in"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0].Options.ChannelOverride != "" {
		t.Fatalf("плановый запуск не должен перенаправлять уведомление: %+v", runner.calls)
	}
	if err := d.RunScheduled(context.Background(), "nope"); !errors.Is(err, ErrUnknownDirection) {
		t.Fatalf("ожидали ErrUnknownDirection, получили %v", err)
	}
}

func TestRunTestRequiresTestChannel(t *testing.T) {
	runner := &recordingRunner{}
	d, _ := NewDispatcher(runner, twoDirections(), "", zerolog.Nop())

	if _, err := d.RunTest(context.Background(), "checking-out"); !errors.Is(err, ErrNoTestChannel) {
		t.Fatalf("ожидали ErrNoTestChannel, получили %v", err)
	}
	if err := d.RunAllTest(context.Background()); !errors.Is(err, ErrNoTestChannel) {
		t.Fatalf("ожидали ErrNoTestChannel, получили %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("без тестового канала проверки не запускаются")
	}
}

func TestRunAllTestRedirectsEveryDirection(t *testing.T) {
	runner := &recordingRunner{}
	d, _ := NewDispatcher(runner, twoDirections(), "C_TEST", zerolog.Nop())

	if err := d.RunAllTest(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("ожидали 2 запуска, получили %d", len(runner.calls))
	}
	labels := make([]string, 0, 2)
	for _, call := range runner.calls {
		if call.Options.ChannelOverride != "C_TEST" {
			t.Fatalf("запуск %s ушёл не в тестовый канал", call.Label)
		}
		labels = append(labels, call.Label)
	}
	sort.Strings(labels)
	if labels[0] != "checking-in" || labels[1] != "checking-out" {
		t.Fatalf("неверные направления: %v", labels)
	}
}

func TestRunAllTestReportsFailure(t *testing.T) {
	runner := &recordingRunner{err: errors.New("boom")}
	d, _ := NewDispatcher(runner, twoDirections(), "C_TEST", zerolog.Nop())
	if err := d.RunAllTest(context.Background()); err == nil {
		t.Fatal("ожидали ошибку")
	}
	if len(runner.calls) != 2 {
		t.Fatalf("ошибка одного направления не отменяет другое, запусков %d", len(runner.calls))
	}
}

func TestDirectionsKeepsConfiguredOrder(t *testing.T) {
	d, _ := NewDispatcher(&recordingRunner{}, twoDirections(), "", zerolog.Nop())
	got := d.Directions()
	if len(got) != 2 || got[0].Label != "checking-out" || got[1].Label != "checking-in" {
		t.Fatalf("неверный порядок направлений: %+v", got)
	}
}
