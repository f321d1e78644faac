package service

import (
	"context"
	"encoding/json"

	"school-chatbot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// TranscriptWriter persists one chat exchange.
type TranscriptWriter interface {
	Write(entry logger.TranscriptEntry)
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	writer    TranscriptWriter
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	writer TranscriptWriter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		writer:    writer,
		logger:    log,
	}
}

// Consume subscribes to the transcript topic and writes entries until ctx is done.
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
	var entry logger.TranscriptEntry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		cs.logger.Error("TRANSCRIPT", "Failed to decode transcript message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		// a broken payload will never decode, don't redeliver it
		msg.Ack()
		return
	}

	cs.writer.Write(entry)
	msg.Ack()
}
