package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Snippet struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileName      string         `gorm:"type:varchar(255);not null"`
	Code          string         `gorm:"type:text;not null"`
	Position      int            `gorm:"default:0"` // upload order within the session
	Analysis      datatypes.JSON `gorm:"type:jsonb"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Snippet) TableName() string {
	return "snippets"
}
