package slackclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"standup-audit-bot/internal/domain"
	"standup-audit-bot/internal/infra/metrics"
)

const (
	component     = "slack"
	usersPageSize = 200
)

// Client реализует domain.ChatClient поверх Slack Web API.
type Client struct {
	api        *slack.Client
	httpClient *http.Client
	apiURL     string
}

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout задаёт таймаут одного запроса к API.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithAPIURL меняет базовый адрес API. Адрес должен заканчиваться на "/".
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// New создаёт клиент Slack с bot-токеном.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("slack: token is required")
	}
	c := &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	options := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		options = append(options, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, options...)
	return c, nil
}

// GroupMembers возвращает идентификаторы участников группы пользователей.
func (c *Client) GroupMembers(ctx context.Context, groupID string) (members []domain.Identity, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "usergroups_users_list", groupID, start, err) }()

	ids, err := c.api.GetUserGroupMembersContext(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("usergroups.users.list %s: %w", groupID, err)
	}
	members = make([]domain.Identity, 0, len(ids))
	for _, id := range ids {
		members = append(members, domain.Identity(id))
	}
	return members, nil
}

// ChannelHistory читает одну страницу истории канала. Окно включает обе границы;
// верхняя граница расширяется до конца секунды, потому что ts в Slack дробные.
func (c *Client) ChannelHistory(ctx context.Context, query domain.HistoryQuery) (page domain.HistoryPage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "conversations_history", query.ChannelID, start, err) }()

	params := &slack.GetConversationHistoryParameters{
		ChannelID: query.ChannelID,
		Cursor:    query.Cursor,
		Inclusive: true,
		Oldest:    strconv.FormatInt(query.Oldest, 10),
		Latest:    fmt.Sprintf("%d.999999", query.Latest),
		Limit:     query.Limit,
	}
	resp, err := c.api.GetConversationHistoryContext(ctx, params)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("conversations.history %s: %w", query.ChannelID, err)
	}
	page.Messages = make([]domain.HistoryMessage, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		page.Messages = append(page.Messages, domain.HistoryMessage{Timestamp: msg.Timestamp, Text: msg.Text})
	}
	if resp.HasMore {
		page.NextCursor = resp.ResponseMetaData.NextCursor
	}
	return page, nil
}

// ListUsers выгружает весь справочник пользователей, проходя все страницы.
// Любая ошибка страницы, включая ограничение частоты, прерывает выгрузку без повторов.
func (c *Client) ListUsers(ctx context.Context) (users []domain.DirectoryUser, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "users_list", "workspace", start, err) }()

	page := c.api.GetUsersPaginated(slack.GetUsersOptionLimit(usersPageSize))
	for {
		var nextErr error
		page, nextErr = page.Next(ctx)
		if page.Done(nextErr) {
			break
		}
		if nextErr != nil {
			return nil, fmt.Errorf("users.list: %w", nextErr)
		}
		for _, u := range page.Users {
			users = append(users, domain.DirectoryUser{
				ID:             domain.Identity(u.ID),
				DisplayName:    u.Profile.DisplayName,
				RealName:       u.Profile.RealName,
				LegacyRealName: u.RealName,
				Handle:         u.Name,
			})
		}
	}
	if users == nil {
		users = []domain.DirectoryUser{}
	}
	return users, nil
}

// PostMessage публикует текст в канал или в тред и возвращает ts сообщения.
func (c *Client) PostMessage(ctx context.Context, channelID, text, threadTS string) (ts string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "chat_post_message", channelID, start, err) }()

	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}
	_, ts, err = c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage %s: %w", channelID, err)
	}
	return ts, nil
}

// DeleteMessage удаляет сообщение бота по ts.
func (c *Client) DeleteMessage(ctx context.Context, channelID, ts string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest(component, "chat_delete", channelID, start, err) }()

	if _, _, err = c.api.DeleteMessageContext(ctx, channelID, ts); err != nil {
		return fmt.Errorf("chat.delete %s %s: %w", channelID, ts, err)
	}
	return nil
}
