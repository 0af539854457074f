package unitofwork

import (
	"context"

	"code-analyzer-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	SnippetRepository() contract.SnippetRepository
	SnippetEmbeddingRepository() contract.SnippetEmbeddingRepository
}
