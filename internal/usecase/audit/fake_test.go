package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"standup-audit-bot/internal/domain"
)

type postedMessage struct {
	Channel  string
	Text     string
	ThreadTS string
}

// fakeChat реализует domain.ChatClient в памяти.
type fakeChat struct {
	mu sync.Mutex

	members    map[string][]domain.Identity
	membersErr error

	pages      map[string]domain.HistoryPage
	historyErr error
	queries    []domain.HistoryQuery

	users    []domain.DirectoryUser
	usersErr error

	postErrAt int
	posted    []postedMessage
	deleted   []string
	deleteErr error
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		members: make(map[string][]domain.Identity),
		pages:   make(map[string]domain.HistoryPage),
	}
}

func (f *fakeChat) GroupMembers(_ context.Context, groupID string) ([]domain.Identity, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	members, ok := f.members[groupID]
	if !ok {
		return nil, errors.New("no_such_subteam")
	}
	return append([]domain.Identity(nil), members...), nil
}

func (f *fakeChat) ChannelHistory(_ context.Context, query domain.HistoryQuery) (domain.HistoryPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.historyErr != nil {
		return domain.HistoryPage{}, f.historyErr
	}
	return f.pages[query.Cursor], nil
}

func (f *fakeChat) ListUsers(context.Context) ([]domain.DirectoryUser, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeChat) PostMessage(_ context.Context, channelID, text, threadTS string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErrAt > 0 && len(f.posted)+1 == f.postErrAt {
		return "", errors.New("channel_not_found")
	}
	f.posted = append(f.posted, postedMessage{Channel: channelID, Text: text, ThreadTS: threadTS})
	return fmt.Sprintf("1700000000.%06d", len(f.posted)), nil
}

func messages(texts ...string) []domain.HistoryMessage {
	out := make([]domain.HistoryMessage, 0, len(texts))
	for i, text := range texts {
		out = append(out, domain.HistoryMessage{Timestamp: fmt.Sprintf("1700000100.%06d", i), Text: text})
	}
	return out
}

func ids(values ...string) []domain.Identity {
	out := make([]domain.Identity, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Identity(v))
	}
	return out
}

func set(values ...string) map[domain.Identity]struct{} {
	out := make(map[domain.Identity]struct{}, len(values))
	for _, v := range values {
		out[domain.Identity(v)] = struct{}{}
	}
	return out
}

func (f *fakeChat) DeleteMessage(_ context.Context, _ string, ts string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ts)
	return nil
}
