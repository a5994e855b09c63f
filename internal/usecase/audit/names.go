package audit

import (
	"context"
	"fmt"
	"strings"

	"standup-audit-bot/internal/domain"
)

// NameMap сопоставляет идентификатор отображаемому имени.
type NameMap map[domain.Identity]string

// Lookup возвращает имя или сам идентификатор, если имени нет.
func (m NameMap) Lookup(id domain.Identity) string {
	if name, ok := m[id]; ok && name != "" {
		return name
	}
	return string(id)
}

// DisplayName выбирает имя по приоритету: отображаемое, настоящее,
// устаревшее настоящее, логин, идентификатор.
func DisplayName(u domain.DirectoryUser) string {
	for _, candidate := range []string{u.DisplayName, u.RealName, u.LegacyRealName, u.Handle} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return string(u.ID)
}

// NameResolver строит NameMap по полному справочнику.
type NameResolver struct {
	users domain.UserDirectory
}

// NewNameResolver создаёт резолвер имён.
func NewNameResolver(users domain.UserDirectory) *NameResolver {
	return &NameResolver{users: users}
}

// BuildNameMap загружает весь справочник и строит карту имён.
func (r *NameResolver) BuildNameMap(ctx context.Context) (NameMap, error) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("справочник пользователей: %w", err)
	}
	names := make(NameMap, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		names[u.ID] = DisplayName(u)
	}
	return names, nil
}
