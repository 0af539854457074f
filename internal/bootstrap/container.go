package bootstrap

import (
	"log"

	"code-analyzer-be/internal/config"
	"code-analyzer-be/internal/controller"
	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/internal/repository/memory"
	"code-analyzer-be/internal/repository/unitofwork"
	"code-analyzer-be/internal/service"
	"code-analyzer-be/pkg/agent/analyzer"
	"code-analyzer-be/pkg/agent/dispatch"
	"code-analyzer-be/pkg/agent/memo"
	"code-analyzer-be/pkg/agent/report"
	"code-analyzer-be/pkg/agent/research"
	"code-analyzer-be/pkg/agent/runner"
	"code-analyzer-be/pkg/embedding"
	"code-analyzer-be/pkg/llm/factory"
	"code-analyzer-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Conversation Engine
	memoStore := memo.NewFileStore(cfg.Keys.MemoryFile)
	index := retrieval.NewPgVectorIndex(embeddingProvider, uowFactory, sysLogger, retrieval.DefaultConfig())

	handlers := []dispatch.Handler{
		analyzer.NewHandler(index, sysLogger),
		report.NewHandler(sysLogger),
	}
	routing := dispatch.DefaultConfig()
	if cfg.Ai.ResearchMode {
		handlers = append(handlers,
			research.NewMarketNewsHandler(llmProvider, sysLogger),
			research.NewCompanyProfileHandler(llmProvider, sysLogger),
		)
		routing = dispatch.ResearchConfig()
		log.Printf("[INFO] Research pipeline enabled")
	}

	registry := dispatch.NewRegistry(handlers...)
	dispatcher := dispatch.NewDispatcher(registry, memoStore, llmProvider, index, sysLogger, routing)
	turnRunner := runner.NewRunner(dispatcher, sysLogger)

	// 5. Services
	conversationRepo := memory.NewConversationRepository()
	publisherService := service.NewPublisherService(cfg.Keys.TurnTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.TurnTopic,
		auditLogger,
		sysLogger,
	)

	chatService := service.NewChatService(
		uowFactory,
		conversationRepo,
		turnRunner,
		publisherService,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
	}
}
