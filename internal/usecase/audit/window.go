package audit

import (
	"time"

	"standup-audit-bot/internal/domain"
)

const reportDateLayout = "2006-01-02"

// WindowCalculator вычисляет окно проверки в одном настроенном часовом поясе.
type WindowCalculator struct {
	loc *time.Location
	now func() time.Time
}

// NewWindowCalculator создаёт калькулятор. Пустые аргументы заменяются на UTC и time.Now.
func NewWindowCalculator(loc *time.Location, now func() time.Time) *WindowCalculator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &WindowCalculator{loc: loc, now: now}
}

// Compute возвращает окно для отсечки cutoff и сдвига дней dayOffset относительно сегодняшнего дня.
// Начало окна — полночь базового дня, конец — секунда перед отсечкой,
// а для отсечки 23:59 — 23:59:59 базового дня.
func (c *WindowCalculator) Compute(cutoff domain.Clock, dayOffset int) domain.AuditWindow {
	y, m, d := c.now().In(c.loc).Date()
	d += dayOffset

	start := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	lastSecond := time.Date(y, m, d, 23, 59, 59, 0, c.loc)

	end := lastSecond
	if !cutoff.IsEndOfDay() {
		end = time.Date(y, m, d, cutoff.Hour, cutoff.Minute, 0, 0, c.loc).Add(-time.Second)
	}
	if end.Before(start) {
		end = lastSecond
	}

	return domain.AuditWindow{
		Start:      start,
		End:        end,
		ReportDate: start.Format(reportDateLayout),
	}
}
