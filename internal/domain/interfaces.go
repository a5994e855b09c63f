package domain

import (
	"context"
	"time"
)

// GroupDirectory отдаёт участников группы пользователей.
type GroupDirectory interface {
	GroupMembers(ctx context.Context, groupID string) ([]Identity, error)
}

// HistorySource читает историю канала постранично.
type HistorySource interface {
	ChannelHistory(ctx context.Context, query HistoryQuery) (HistoryPage, error)
}

// UserDirectory возвращает полный справочник пользователей.
// Реализация обязана пройти все страницы до конца.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]DirectoryUser, error)
}

// Poster публикует и удаляет сообщения. Пустой threadTS означает сообщение верхнего уровня.
type Poster interface {
	PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error)
	DeleteMessage(ctx context.Context, channelID, ts string) error
}

// ChatClient объединяет все операции внешнего чата, нужные проверке.
type ChatClient interface {
	GroupDirectory
	HistorySource
	UserDirectory
	Poster
}

// NotifyMarker хранит отметки об уже отправленных уведомлениях.
type NotifyMarker interface {
	// Once выполняет fn, если ключ ещё не был отмечен, и возвращает true.
	// Если отметка уже есть, fn не вызывается и возвращается false без ошибки.
	// При ошибке fn отметка снимается.
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error)
}
