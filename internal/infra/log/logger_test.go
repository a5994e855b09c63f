package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "prod", "auditor")
	logger.Debug().Msg("скрыто")
	logger.Info().Str("check", "checking-out").Msg("готово")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("debug не должен попадать в лог вне dev, строк: %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("ожидали JSON: %v", err)
	}
	if entry["service"] != "auditor" || entry["check"] != "checking-out" || entry["message"] != "готово" {
		t.Fatalf("неверная запись: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("ожидали метку времени")
	}
}

func TestNewLoggerDevIsVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "dev", "")
	logger.Debug().Msg("подробности")
	if !strings.Contains(buf.String(), "подробности") {
		t.Fatalf("в dev ожидали debug-сообщения, получили %q", buf.String())
	}
}
