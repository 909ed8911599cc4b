package service

import (
	"context"
	"encoding/json"

	"product-chat-be/internal/dto"
	"product-chat-be/internal/pkg/logger"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/internal/repository/unitofwork"
	"product-chat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
)

const vectorizeSessionId = "vectorize"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds queued products and stores their vectors.
type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.VectorizeProductMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("VECTORIZE", "failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		// Redelivery cannot fix a broken payload.
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"collection": payload.Collection,
		"product_id": payload.ProductId,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx,
		specification.ByCollection{Collection: payload.Collection},
		specification.ByProductID{ProductID: payload.ProductId},
	)
	if err != nil {
		details["error"] = err
		cs.logger.Error("VECTORIZE", "failed to load product", details)
		msg.Nack()
		return
	}
	if product == nil {
		cs.logger.Warn("VECTORIZE", "product no longer exists", details)
		msg.Ack()
		return
	}

	res, err := cs.embeddingProvider.Generate(ctx, vectorizeSessionId, product.VectorText())
	if err != nil {
		details["error"] = err
		cs.logger.Error("VECTORIZE", "failed to embed product", details)
		msg.Nack()
		return
	}

	if err := uow.ProductRepository().UpdateEmbedding(ctx, payload.Collection, payload.ProductId, res.Values); err != nil {
		details["error"] = err
		cs.logger.Error("VECTORIZE", "failed to store embedding", details)
		msg.Nack()
		return
	}

	details["tokens"] = res.Tokens
	cs.logger.Info("VECTORIZE", "product vectorized", details)
	msg.Ack()
}
