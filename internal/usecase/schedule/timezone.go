package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimezone возвращается, если указан некорректный часовой пояс.
var ErrInvalidTimezone = errors.New("invalid timezone")

// LoadLocation нормализует имя часового пояса и загружает его.
func LoadLocation(raw string) (*time.Location, error) {
	name, err := NormalizeTimezone(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, raw)
	}
	return time.LoadLocation(name)
}

// NormalizeTimezone приводит имя часового пояса к виду IANA:
// пробелы заменяются на "_", регистр частей восстанавливается.
func NormalizeTimezone(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", ErrInvalidTimezone
	}
	candidate = strings.ReplaceAll(candidate, " ", "_")
	if _, err := time.LoadLocation(candidate); err == nil {
		return candidate, nil
	}

	parts := strings.Split(strings.ToLower(candidate), "/")
	for i, part := range parts {
		parts[i] = titleSegments(part)
	}
	normalized := strings.Join(parts, "/")
	if _, err := time.LoadLocation(normalized); err == nil {
		return normalized, nil
	}
	if upper := strings.ToUpper(candidate); upper != candidate {
		if _, err := time.LoadLocation(upper); err == nil {
			return upper, nil
		}
	}
	return "", ErrInvalidTimezone
}

func titleSegments(part string) string {
	segments := strings.Split(part, "_")
	for j, segment := range segments {
		pieces := strings.Split(segment, "-")
		for k, piece := range pieces {
			if piece == "" {
				continue
			}
			pieces[k] = strings.ToUpper(piece[:1]) + piece[1:]
		}
		segments[j] = strings.Join(pieces, "-")
	}
	return strings.Join(segments, "_")
}
