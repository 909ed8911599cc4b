package service

import (
	"context"
	"encoding/json"
	"fmt"

	"product-chat-be/internal/dto"
	"product-chat-be/internal/entity"
	"product-chat-be/internal/pkg/logger"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/internal/repository/unitofwork"
	"product-chat-be/pkg/events"
	"product-chat-be/pkg/rag/executor"
)

type IProductService interface {
	Import(ctx context.Context, req *dto.ImportProductsRequest) (*dto.ImportProductsResponse, error)
	RequeuePending(ctx context.Context, req *dto.RequeuePendingRequest) (*dto.RequeuePendingResponse, error)
}

type productService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   executor.EventPublisher
	logger           logger.ILogger
	collection       string
}

func NewProductService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher executor.EventPublisher,
	log logger.ILogger,
	defaultCollection string,
) IProductService {
	if defaultCollection == "" {
		defaultCollection = entity.DefaultCollection
	}
	return &productService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		collection:       defaultCollection,
	}
}

// Import upserts the products and queues each of them for vectorization.
func (s *productService) Import(ctx context.Context, req *dto.ImportProductsRequest) (*dto.ImportProductsResponse, error) {
	collection := req.Collection
	if collection == "" {
		collection = s.collection
	}

	products := make([]entity.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, entity.Product{
			ProductId:            p.Id,
			Collection:           collection,
			ProductName:          p.Title,
			Gender:               p.Gender,
			Price:                p.Price,
			Description:          p.Description,
			DescriptionGenerated: p.DescriptionGenerated,
			PrimaryColor:         p.Color,
			ImageUrl:             p.ImageLink,
			ProductUrl:           p.Link,
			Categories:           p.Categories,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProductRepository().UpsertBulk(ctx, products); err != nil {
		return nil, fmt.Errorf("upsert products: %w", err)
	}

	if err := s.queue(ctx, collection, products); err != nil {
		return nil, err
	}

	s.logger.Info("PRODUCT", "products imported", map[string]interface{}{
		"collection": collection,
		"count":      len(products),
	})

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewProductsImported(collection, len(products))); err != nil {
			s.logger.Warn("PRODUCT", "failed to publish import event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.ImportProductsResponse{Collection: collection, Imported: len(products)}, nil
}

// RequeuePending queues every product of the collection that has no embedding
// yet, e.g. after the consumer gave up on it or the process restarted with
// messages still in flight.
func (s *productService) RequeuePending(ctx context.Context, req *dto.RequeuePendingRequest) (*dto.RequeuePendingResponse, error) {
	collection := req.Collection
	if collection == "" {
		collection = s.collection
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	pending, err := uow.ProductRepository().FindAll(ctx,
		specification.ByCollection{Collection: collection},
		specification.NotVectorized{},
	)
	if err != nil {
		return nil, fmt.Errorf("find pending products: %w", err)
	}

	if err := s.queue(ctx, collection, pending); err != nil {
		return nil, err
	}

	s.logger.Info("PRODUCT", "pending products requeued", map[string]interface{}{
		"collection": collection,
		"count":      len(pending),
	})

	return &dto.RequeuePendingResponse{Collection: collection, Queued: len(pending)}, nil
}

func (s *productService) queue(ctx context.Context, collection string, products []entity.Product) error {
	for _, p := range products {
		payload, err := json.Marshal(dto.VectorizeProductMessage{Collection: collection, ProductId: p.ProductId})
		if err != nil {
			return err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return fmt.Errorf("queue product %s for vectorization: %w", p.ProductId, err)
		}
	}
	return nil
}
