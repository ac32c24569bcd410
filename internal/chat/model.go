package chat

import (
	"strconv"
	"time"
)

const (
	KindChat         = "chat"
	KindNotification = "notification"
)

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
	Kind           string    `json:"kind"`
}

// key identifies a message for de-duplication. Frames from older servers
// carry no id; those fall back to sender, content and timestamp.
func (m Message) key() string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	return "c:" + m.SenderID + "|" + m.Content + "|" + strconv.FormatInt(m.SentAt.UnixNano(), 10)
}

type outbound struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}
