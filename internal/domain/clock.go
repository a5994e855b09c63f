package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidClock возвращается для времени не в формате HH:MM.
var ErrInvalidClock = errors.New("invalid time of day")

// Clock — время суток с точностью до минуты.
type Clock struct {
	Hour   int
	Minute int
}

// EndOfDay — отсечка, означающая «до конца дня включительно».
var EndOfDay = Clock{Hour: 23, Minute: 59}

// ParseClock разбирает строку вида "09:15".
func ParseClock(input string) (Clock, error) {
	tm, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, input)
	}
	return Clock{Hour: tm.Hour(), Minute: tm.Minute()}, nil
}

// IsEndOfDay сообщает, совпадает ли время с отсечкой конца дня.
func (c Clock) IsEndOfDay() bool {
	return c == EndOfDay
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
