package audit

import "standup-audit-bot/internal/domain"

// Reconcile возвращает участников targets, которых нет в submitted, сохраняя порядок targets.
func Reconcile(targets []domain.Identity, submitted map[domain.Identity]struct{}) []domain.Identity {
	missing := make([]domain.Identity, 0, len(targets))
	for _, id := range targets {
		if _, ok := submitted[id]; ok {
			continue
		}
		missing = append(missing, id)
	}
	return missing
}
