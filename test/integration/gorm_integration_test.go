package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"code-analyzer-be/internal/constant"
	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/repository/specification"
	"code-analyzer-be/internal/repository/unitofwork"
	"code-analyzer-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.SnippetEmbeddingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Chat Session Repository", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chat session count: %d", count)
	})

	t.Run("Check Snippet Embedding Repository", func(t *testing.T) {
		count, err := uow.SnippetEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Snippet embedding count: %d", count)
	})

	t.Run("Check Transactional Session Create", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)

		err := txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		session := &entity.ChatSession{
			Id:    uuid.New(),
			Title: constant.ChatSessionDefaultTitle,
		}
		err = txUow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		message := &entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          constant.ChatGreetingMessage,
			Role:          constant.ChatMessageRoleAssistant,
			ChatSessionId: session.Id,
		}
		err = txUow.ChatMessageRepository().Create(ctx, message)
		assert.NoError(t, err)

		found, err := txUow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
		)
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		// Rollback via defer keeps the database clean
	})
}
