package audit

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"standup-audit-bot/internal/domain"
)

// ErrPaginationLoop возвращается, если источник повторно вернул уже пройденный курсор.
var ErrPaginationLoop = errors.New("history cursor repeated")

const defaultHistoryPageSize = 200

// MentionPattern находит упоминание вида <@U123> или <@U123|name>.
var MentionPattern = regexp.MustCompile(`<@([A-Za-z0-9]+)(?:\|[^>]*)?>`)

// MentionStrategy определяет автора отчёта по тексту сообщения.
type MentionStrategy interface {
	Submitter(text string) (domain.Identity, bool)
}

// FirstMention считает автором первое упоминание в тексте.
// Шаблон отчёта всегда начинается с упоминания самого автора.
type FirstMention struct {
	Pattern *regexp.Regexp
}

// Submitter реализует MentionStrategy.
func (f FirstMention) Submitter(text string) (domain.Identity, bool) {
	pattern := f.Pattern
	if pattern == nil {
		pattern = MentionPattern
	}
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return domain.Identity(match[1]), true
}

// Extractor читает историю канала и извлекает отчитавшихся.
type Extractor struct {
	history  domain.HistorySource
	strategy MentionStrategy
	pageSize int
}

// NewExtractor создаёт экстрактор. Без стратегии используется FirstMention.
func NewExtractor(history domain.HistorySource, strategy MentionStrategy) *Extractor {
	if strategy == nil {
		strategy = FirstMention{}
	}
	return &Extractor{history: history, strategy: strategy, pageSize: defaultHistoryPageSize}
}

// FetchHistory выгружает все сообщения окна, проходя курсоры до конца.
func (e *Extractor) FetchHistory(ctx context.Context, channelID string, window domain.AuditWindow) ([]domain.HistoryMessage, error) {
	var (
		messages []domain.HistoryMessage
		cursor   string
		seen     = make(map[string]struct{})
	)
	for {
		page, err := e.history.ChannelHistory(ctx, domain.HistoryQuery{
			ChannelID: channelID,
			Oldest:    window.Oldest(),
			Latest:    window.Latest(),
			Cursor:    cursor,
			Limit:     e.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("история канала %s: %w", channelID, err)
		}
		messages = append(messages, page.Messages...)
		if page.NextCursor == "" {
			return messages, nil
		}
		if _, ok := seen[page.NextCursor]; ok {
			return nil, fmt.Errorf("%w: %s", ErrPaginationLoop, page.NextCursor)
		}
		seen[page.NextCursor] = struct{}{}
		cursor = page.NextCursor
	}
}

// Submitters извлекает авторов из сообщений и оставляет только участников targets.
func (e *Extractor) Submitters(messages []domain.HistoryMessage, targets []domain.Identity) map[domain.Identity]struct{} {
	found := make(map[domain.Identity]struct{})
	for _, msg := range messages {
		if id, ok := e.strategy.Submitter(msg.Text); ok {
			found[id] = struct{}{}
		}
	}
	submitted := make(map[domain.Identity]struct{}, len(found))
	for _, id := range targets {
		if _, ok := found[id]; ok {
			submitted[id] = struct{}{}
		}
	}
	return submitted
}

// ExtractSubmitted объединяет FetchHistory и Submitters.
func (e *Extractor) ExtractSubmitted(ctx context.Context, channelID string, window domain.AuditWindow, targets []domain.Identity) (map[domain.Identity]struct{}, error) {
	messages, err := e.FetchHistory(ctx, channelID, window)
	if err != nil {
		return nil, err
	}
	return e.Submitters(messages, targets), nil
}
