package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Name      string    `json:"name,omitempty"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

// SendChatRequest carries one user turn. For uploads the client sends the
// command in Chat plus the snippet in FileName/Code; the service composes
// the first line from Chat and FileName and puts Code after the newline.
type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
	FileName      string    `json:"file_name,omitempty" validate:"max=255"`
	Code          string    `json:"code,omitempty"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID               `json:"chat_session_id"`
	ChatSessionTitle string                  `json:"title"`
	Sent             *SendChatResponseChat   `json:"sent"`
	// Reply is the last assistant message of the turn; nil when the turn
	// ended silently (e.g. the finish command).
	Reply   *SendChatResponseChat   `json:"reply"`
	Replies []*SendChatResponseChat `json:"replies,omitempty"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

// ConversationTurnMessage is the payload published after each committed
// turn; the audit consumer appends it to the conversation log.
type ConversationTurnMessage struct {
	ChatSessionId uuid.UUID         `json:"chat_session_id"`
	Messages      []TurnMessageItem `json:"messages"`
}

type TurnMessageItem struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	Chat string `json:"chat"`
}
