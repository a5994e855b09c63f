package audit

import (
	"context"
	"errors"
	"fmt"

	"standup-audit-bot/internal/domain"
)

// ChunkSize — сколько имён помещается в один ответ треда.
const ChunkSize = 40

// Notification описывает одно уведомление о пропущенных отчётах.
type Notification struct {
	ChannelID    string
	Label        string
	ReportDate   string
	AdminMention string
	Missing      []domain.Identity
	Names        NameMap
}

// Publisher публикует итог проверки: родительское сообщение и ответы в треде.
type Publisher struct {
	poster    domain.Poster
	chunkSize int
}

// NewPublisher создаёт публикатор с размером блока ChunkSize.
func NewPublisher(poster domain.Poster) *Publisher {
	return &Publisher{poster: poster, chunkSize: ChunkSize}
}

// Publish отправляет родительское сообщение и ответы по порядку. Возвращает ts родителя.
// Если какой-то ответ не отправился, уже опубликованные ответы и родитель удаляются,
// чтобы в канале не осталось неполного итога.
func (p *Publisher) Publish(ctx context.Context, n Notification) (string, error) {
	parentTS, err := p.poster.PostMessage(ctx, n.ChannelID, FormatParent(n.AdminMention, n.Label, n.ReportDate, len(n.Missing)), "")
	if err != nil {
		return "", fmt.Errorf("родительское сообщение: %w", err)
	}
	posted := []string{parentTS}

	replies := []string{FormatNothingMissing()}
	if len(n.Missing) > 0 {
		replies = replies[:0]
		for i, chunk := range Chunk(n.Missing, p.chunkSize) {
			replies = append(replies, FormatChunk(chunk, n.Names, i == 0))
		}
	}

	for i, text := range replies {
		ts, err := p.poster.PostMessage(ctx, n.ChannelID, text, parentTS)
		if err != nil {
			err = fmt.Errorf("ответ в треде %d: %w", i+1, err)
			return "", errors.Join(err, p.retract(ctx, n.ChannelID, posted))
		}
		posted = append(posted, ts)
	}
	return parentTS, nil
}

// retract удаляет сообщения в обратном порядке, ответы раньше родителя.
func (p *Publisher) retract(ctx context.Context, channelID string, posted []string) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(posted) - 1; i >= 0; i-- {
		if err := p.poster.DeleteMessage(ctx, channelID, posted[i]); err != nil {
			errs = append(errs, fmt.Errorf("удаление %s: %w", posted[i], err))
		}
	}
	return errors.Join(errs...)
}

// Chunk делит список на последовательные блоки размером не больше size.
func Chunk(ids []domain.Identity, size int) [][]domain.Identity {
	if size <= 0 {
		size = ChunkSize
	}
	chunks := make([][]domain.Identity, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
