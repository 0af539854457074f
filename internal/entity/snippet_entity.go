package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Snippet struct {
	Id            uuid.UUID
	FileName      string
	Code          string
	Position      int
	Analysis      json.RawMessage
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
