package chat

import "errors"

var (
	ErrNotConnected        = errors.New("chat is not connected")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrConversationMissing = errors.New("conversation id is required")
)
