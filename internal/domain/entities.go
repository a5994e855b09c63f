package domain

import "time"

// Identity — непрозрачный идентификатор человека во внешнем чате.
type Identity string

// Direction описывает одно независимо настроенное направление проверки.
type Direction struct {
	Label        string
	GroupID      string
	AdminGroupID string
	ChannelID    string
	Cutoff       Clock
	RunAt        Clock
	DayOffset    int
	Days         string
	Exclude      []Identity
}

// AuditWindow задаёт интервал проверки в настроенном часовом поясе.
type AuditWindow struct {
	Start      time.Time
	End        time.Time
	ReportDate string
}

// Oldest возвращает начало окна в секундах эпохи.
func (w AuditWindow) Oldest() int64 {
	return w.Start.Unix()
}

// Latest возвращает последнюю включённую секунду окна.
func (w AuditWindow) Latest() int64 {
	return w.End.Unix()
}

// HistoryMessage представляет запись истории канала.
type HistoryMessage struct {
	Timestamp string
	Text      string
}

// HistoryQuery описывает запрос одной страницы истории канала.
type HistoryQuery struct {
	ChannelID string
	Oldest    int64
	Latest    int64
	Cursor    string
	Limit     int
}

// HistoryPage содержит страницу истории и курсор следующей.
type HistoryPage struct {
	Messages   []HistoryMessage
	NextCursor string
}

// DirectoryUser — запись справочника пользователей с полями имени.
type DirectoryUser struct {
	ID             Identity
	DisplayName    string
	RealName       string
	LegacyRealName string
	Handle         string
}

// CheckReport содержит итог одного запуска проверки. Нигде не сохраняется.
type CheckReport struct {
	RunID       string    `json:"run_id"`
	Label       string    `json:"label"`
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	ReportDate  string    `json:"report_date"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Targets     int       `json:"targets"`
	Submitted   int       `json:"submitted"`
	Missing     []string  `json:"missing"`
	ParentTS    string    `json:"parent_ts,omitempty"`
	Skipped     bool      `json:"skipped,omitempty"`
	Stage       string    `json:"stage"`
}
