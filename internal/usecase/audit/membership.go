package audit

import (
	"context"
	"errors"
	"fmt"

	"standup-audit-bot/internal/domain"
)

// ErrGroupUnavailable возвращается, если группу участников не удалось получить.
var ErrGroupUnavailable = errors.New("target group unavailable")

// MembershipResolver определяет, кто обязан отчитаться.
type MembershipResolver struct {
	groups domain.GroupDirectory
}

// NewMembershipResolver создаёт резолвер участников.
func NewMembershipResolver(groups domain.GroupDirectory) *MembershipResolver {
	return &MembershipResolver{groups: groups}
}

// ResolveTargets возвращает участников группы без исключённых, в порядке источника.
func (r *MembershipResolver) ResolveTargets(ctx context.Context, groupID string, exclude []domain.Identity) ([]domain.Identity, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: empty group id", ErrGroupUnavailable)
	}
	members, err := r.groups.GroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGroupUnavailable, groupID, err)
	}

	skip := make(map[domain.Identity]struct{}, len(exclude)+len(members))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	targets := make([]domain.Identity, 0, len(members))
	for _, id := range members {
		if id == "" {
			continue
		}
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		targets = append(targets, id)
	}
	return targets, nil
}
