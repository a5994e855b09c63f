package audit

import (
	"testing"
	"time"

	"standup-audit-bot/internal/domain"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("нет данных часового пояса %s: %v", name, err)
	}
	return loc
}

func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestComputeOrdinaryCutoff(t *testing.T) {
	loc := mustLocation(t, "Asia/Seoul")
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, loc)
	calc := NewWindowCalculator(loc, fixedNow(now))

	window := calc.Compute(domain.Clock{Hour: 10, Minute: 0}, 0)

	midnight := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	if !window.Start.Equal(midnight) {
		t.Fatalf("ожидали начало %v, получили %v", midnight, window.Start)
	}
	wantEnd := midnight.Add(10*time.Hour - time.Second)
	if !window.End.Equal(wantEnd) {
		t.Fatalf("ожидали конец %v, получили %v", wantEnd, window.End)
	}
	if window.ReportDate != "2026-10-19" {
		t.Fatalf("неверная дата отчёта: %s", window.ReportDate)
	}
	if window.Latest()-window.Oldest() != int64(10*time.Hour/time.Second)-1 {
		t.Fatalf("неверная длина окна в секундах")
	}
}

func TestComputeEndOfDaySentinel(t *testing.T) {
	loc := mustLocation(t, "Europe/Amsterdam")
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, loc)
	calc := NewWindowCalculator(loc, fixedNow(now))

	window := calc.Compute(domain.EndOfDay, 0)

	want := time.Date(2026, 10, 19, 0, 0, 0, 0, loc).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	if !window.End.Equal(want) {
		t.Fatalf("ожидали конец %v, получили %v", want, window.End)
	}
}

func TestComputePreviousDay(t *testing.T) {
	loc := mustLocation(t, "Asia/Seoul")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)
	calc := NewWindowCalculator(loc, fixedNow(now))

	for _, cutoff := range []domain.Clock{{Hour: 18, Minute: 30}, domain.EndOfDay, {Hour: 0, Minute: 1}} {
		today := calc.Compute(cutoff, 0)
		yesterday := calc.Compute(cutoff, -1)

		if got := yesterday.Start.Format(reportDateLayout); got != "2026-02-28" {
			t.Fatalf("ожидали начало 2026-02-28, получили %s", got)
		}
		if got := yesterday.End.Format(reportDateLayout); got != "2026-02-28" {
			t.Fatalf("ожидали конец 2026-02-28, получили %s", got)
		}
		if !yesterday.Start.AddDate(0, 0, 1).Equal(today.Start) {
			t.Fatalf("начала окон должны отличаться на сутки")
		}
		if yesterday.ReportDate != "2026-02-28" {
			t.Fatalf("неверная дата отчёта: %s", yesterday.ReportDate)
		}
	}
}

func TestComputeClampsMidnightCutoff(t *testing.T) {
	loc := mustLocation(t, "Asia/Seoul")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, loc)
	calc := NewWindowCalculator(loc, fixedNow(now))

	window := calc.Compute(domain.Clock{}, 0)

	want := time.Date(2026, 10, 19, 23, 59, 59, 0, loc)
	if !window.End.Equal(want) {
		t.Fatalf("ожидали конец %v, получили %v", want, window.End)
	}
	if window.End.Before(window.Start) {
		t.Fatalf("конец окна раньше начала")
	}
}

func TestComputeUsesConfiguredZone(t *testing.T) {
	loc := mustLocation(t, "Asia/Seoul")
	// 20:00 UTC 19 октября — это уже 20 октября в Сеуле.
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	calc := NewWindowCalculator(loc, fixedNow(now))

	window := calc.Compute(domain.Clock{Hour: 10, Minute: 0}, 0)

	if window.ReportDate != "2026-10-20" {
		t.Fatalf("ожидали дату по поясу Сеула, получили %s", window.ReportDate)
	}
	if window.Start.Location() != loc {
		t.Fatalf("окно должно быть в настроенном поясе")
	}
}
