package domain

import "time"

// Article is a news item returned by a search provider.
type Article struct {
	URL         string
	Title       string
	Description string
	Content     string
	Source      string
}

// Text joins the non-empty article fields into the body handed to the model.
func (a Article) Text() string {
	var out string
	for _, part := range []string{a.Title, a.Description, a.Content} {
		if part == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += part
	}
	return out
}

// ScanResult summarises one ingestion batch.
type ScanResult struct {
	Candidates     int       `json:"candidates"`
	Added          int       `json:"added"`
	Skipped        int       `json:"skipped"`
	QuotaExhausted bool      `json:"quotaExhausted"`
	Errors         []string  `json:"errors"`
	AddedTitles    []string  `json:"-"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChatRole is the speaker of a chat message.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn of the assistant conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
