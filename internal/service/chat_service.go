package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"code-analyzer-be/internal/constant"
	"code-analyzer-be/internal/dto"
	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/internal/repository/memory"
	"code-analyzer-be/internal/repository/specification"
	"code-analyzer-be/internal/repository/unitofwork"
	"code-analyzer-be/pkg/agent/runner"
	"code-analyzer-be/pkg/agent/state"

	"github.com/google/uuid"
)

// IChatService defines the chat service interface
type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	convRepo   *memory.ConversationRepository
	turnRunner *runner.Runner
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	convRepo *memory.ConversationRepository,
	turnRunner *runner.Runner,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		convRepo:   convRepo,
		turnRunner: turnRunner,
		publisher:  publisher,
		logger:     log,
	}
}

// CreateSession creates a new chat session with a greeting message.
func (cs *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		Title:     constant.ChatSessionDefaultTitle,
		CreatedAt: now,
	}
	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.ChatGreetingMessage,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	conv := state.New(chatSession.Id.String()).WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Content: greeting.Chat,
	})
	cs.convRepo.Save(conv)

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

// GetAllSessions retrieves all chat sessions, newest first.
func (cs *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return response, nil
}

// GetChatHistory retrieves the full message history of a session.
func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found")
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Name:      msg.Name,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}

// SendChat runs one conversation turn and persists its messages
// atomically: either the user message and every reply land in history,
// or none of them do.
func (cs *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found")
	}

	conv, found := cs.convRepo.Get(request.ChatSessionId.String())
	if !found {
		conv, err = cs.rebuildConversation(ctx, uow, request.ChatSessionId)
		if err != nil {
			return nil, err
		}
	}

	before := len(conv.Messages)
	conv = conv.WithMessage(state.Message{
		Role:    state.RoleUser,
		Content: composeUserText(request),
	})

	after, err := cs.turnRunner.RunTurn(ctx, conv)
	if err != nil {
		// The cached conversation still holds the pre-turn snapshot.
		return nil, err
	}
	newMessages := after.Messages[before:]

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	var sent *dto.SendChatResponseChat
	var replies []*dto.SendChatResponseChat

	for i, m := range newMessages {
		msgEntity := entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          m.Content,
			Role:          m.Role,
			Name:          m.Name,
			ChatSessionId: request.ChatSessionId,
			// Preserve ordering for same-timestamp turns
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := uow.ChatMessageRepository().Create(ctx, &msgEntity); err != nil {
			return nil, err
		}

		chatDTO := &dto.SendChatResponseChat{
			Id:        msgEntity.Id,
			Chat:      msgEntity.Chat,
			Role:      msgEntity.Role,
			Name:      msgEntity.Name,
			CreatedAt: msgEntity.CreatedAt,
		}
		if m.Role == state.RoleUser {
			sent = chatDTO
		} else {
			replies = append(replies, chatDTO)
		}
	}

	if err := cs.persistAnalyses(ctx, uow, request.ChatSessionId, after.Files); err != nil {
		return nil, err
	}

	if session.Title == constant.ChatSessionDefaultTitle {
		session.Title = deriveTitle(request.Chat)
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.convRepo.Save(after)
	cs.publishTurn(ctx, request.ChatSessionId, newMessages)

	var reply *dto.SendChatResponseChat
	if len(replies) > 0 {
		reply = replies[len(replies)-1]
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent:             sent,
		Reply:            reply,
		Replies:          replies,
	}, nil
}

// DeleteSession removes a session with its messages, snippets and
// embeddings.
func (cs *chatService) DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ChatSessionId})
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SnippetEmbeddingRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.SnippetRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}

	cs.convRepo.Delete(request.ChatSessionId.String())

	return uow.Commit()
}

// rebuildConversation restores the in-memory conversation value from the
// persisted history after a cache eviction or restart.
func (cs *chatService) rebuildConversation(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (state.Conversation, error) {
	conv := state.New(sessionId.String())

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return state.Conversation{}, err
	}
	for _, msg := range chatMessages {
		conv = conv.WithMessage(state.Message{
			Role:    msg.Role,
			Name:    msg.Name,
			Content: msg.Chat,
		})
	}

	snippets, err := uow.SnippetRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return state.Conversation{}, err
	}
	for _, s := range snippets {
		conv = conv.WithFile(s.FileName, s.Code)
		if len(s.Analysis) > 0 {
			var record state.AnalysisRecord
			if err := json.Unmarshal(s.Analysis, &record); err != nil {
				cs.logger.Warn("chat", "skipping corrupt analysis record", map[string]interface{}{
					"snippet_id": s.Id.String(),
					"error":      err.Error(),
				})
				continue
			}
			conv = conv.WithAnalysis(conv.FileIndexByName(s.FileName), record)
		}
	}

	cs.logger.Info("chat", "conversation rebuilt from history", map[string]interface{}{
		"chat_session_id": sessionId.String(),
		"messages":        len(conv.Messages),
		"files":           len(conv.Files),
	})
	return conv, nil
}

// persistAnalyses mirrors the conversation's analyzed files into the
// snippets table.
func (cs *chatService) persistAnalyses(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, files []state.UploadedFile) error {
	repo := uow.SnippetRepository()

	for i, f := range files {
		if f.Analysis == nil {
			continue
		}
		analysisJSON, err := json.Marshal(f.Analysis)
		if err != nil {
			return fmt.Errorf("marshal analysis for %s: %w", f.Name, err)
		}

		snippet, err := repo.FindOne(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId},
			specification.ByFileName{FileName: f.Name},
		)
		if err != nil {
			return err
		}

		if snippet == nil {
			snippet = &entity.Snippet{
				Id:            uuid.New(),
				FileName:      f.Name,
				Code:          f.Code,
				Position:      i,
				Analysis:      analysisJSON,
				ChatSessionId: sessionId,
				CreatedAt:     time.Now(),
			}
			if err := repo.Create(ctx, snippet); err != nil {
				return err
			}
			continue
		}

		snippet.Code = f.Code
		snippet.Analysis = analysisJSON
		if err := repo.Update(ctx, snippet); err != nil {
			return err
		}
	}
	return nil
}

// publishTurn emits the committed turn for the audit consumer. The turn
// is already durable, so a publish failure only logs.
func (cs *chatService) publishTurn(ctx context.Context, sessionId uuid.UUID, messages []state.Message) {
	items := make([]dto.TurnMessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.TurnMessageItem{Role: m.Role, Name: m.Name, Chat: m.Content})
	}

	payload, err := json.Marshal(dto.ConversationTurnMessage{
		ChatSessionId: sessionId,
		Messages:      items,
	})
	if err != nil {
		cs.logger.Warn("chat", "failed to marshal turn event", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := cs.publisher.Publish(ctx, payload); err != nil {
		cs.logger.Warn("chat", "failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

// composeUserText folds an attached snippet into the routed message:
// command plus file name on the first line, code after the newline.
func composeUserText(request *dto.SendChatRequest) string {
	text := request.Chat
	if request.FileName != "" {
		text = text + " " + request.FileName
	}
	if request.Code != "" {
		text = text + "\n" + request.Code
	}
	return text
}

func deriveTitle(chat string) string {
	title := chat
	if len(title) > 60 {
		title = title[:60]
	}
	if title == "" {
		title = constant.ChatSessionDefaultTitle
	}
	return title
}
