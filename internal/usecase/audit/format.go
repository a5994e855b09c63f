package audit

import (
	"fmt"
	"strings"

	"standup-audit-bot/internal/domain"
)

const (
	missingIntro   = "Не отправили отчёт:"
	nothingMissing = "Все участники отправили отчёт ✅"
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// AdminMention формирует упоминание группы администраторов. Пустой id даёт пустую строку.
func AdminMention(groupID string) string {
	if groupID == "" {
		return ""
	}
	return fmt.Sprintf("<!subteam^%s>", groupID)
}

// FormatParent формирует родительское сообщение без перечисления участников.
func FormatParent(adminMention, label, reportDate string, missing int) string {
	line := fmt.Sprintf("📋 Проверка «%s» за %s: без отчёта — %d", escapeText(label), reportDate, missing)
	if adminMention == "" {
		return line
	}
	return adminMention + " " + line
}

// FormatChunk формирует ответ в треде со списком имён. Первый блок получает вводную строку.
func FormatChunk(ids []domain.Identity, names NameMap, first bool) string {
	lines := make([]string, 0, len(ids)+1)
	if first {
		lines = append(lines, missingIntro)
	}
	for _, id := range ids {
		lines = append(lines, escapeText(names.Lookup(id)))
	}
	return strings.Join(lines, "\n")
}

// FormatNothingMissing возвращает ответ для случая, когда отчитались все.
func FormatNothingMissing() string {
	return nothingMissing
}

// escapeText экранирует управляющие символы разметки, чтобы имя не превратилось в упоминание.
func escapeText(s string) string {
	return slackEscaper.Replace(s)
}
