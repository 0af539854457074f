package entity

import (
	"time"

	"github.com/google/uuid"
)

type SnippetEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	SnippetId      uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
