package contract

import (
	"context"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SnippetRepository interface {
	Create(ctx context.Context, snippet *entity.Snippet) error
	Update(ctx context.Context, snippet *entity.Snippet) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Snippet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Snippet, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
