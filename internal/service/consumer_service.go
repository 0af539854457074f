package service

import (
	"context"
	"encoding/json"

	"code-analyzer-be/internal/dto"
	"code-analyzer-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService appends committed conversation turns to the audit log
// through a file-only logger, keeping the main log clean.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	auditLogger logger.ILogger
	sysLogger   logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditLogger logger.ILogger,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		auditLogger: auditLogger,
		sysLogger:   sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.ConversationTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error("consumer", "failed to unmarshal turn event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid, drop them
		return
	}

	for _, m := range payload.Messages {
		cs.auditLogger.Info("conversation", m.Chat, map[string]interface{}{
			"chat_session_id": payload.ChatSessionId.String(),
			"role":            m.Role,
			"name":            m.Name,
		})
	}

	msg.Ack()
}
