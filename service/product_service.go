package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"layerlight-storefront/models"
	"layerlight-storefront/repository"
)

// ProductQuery selects the products of a gallery. The first non-empty field wins,
// in the order Collection, Handle, Search.
type ProductQuery struct {
	Collection string
	Handle     string
	Search     string
}

// ProductServiceInterface defines the catalog operations used by controllers and the gallery
type ProductServiceInterface interface {
	GetByHandle(ctx context.Context, handle string) (*models.Product, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	ListByCollection(ctx context.Context, collectionHandle string) ([]models.Product, error)
	Query(ctx context.Context, q ProductQuery) ([]models.Product, error)
}

// ProductService reads the catalog through the product repository
type ProductService struct {
	repository repository.ProductRepositoryInterface
	logger     *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(repo repository.ProductRepositoryInterface, logger *zap.Logger) *ProductService {
	return &ProductService{repository: repo, logger: logger}
}

// Ensure ProductService implements ProductServiceInterface
var _ ProductServiceInterface = (*ProductService)(nil)

// GetByHandle returns a product or repository.ErrProductNotFound
func (s *ProductService) GetByHandle(ctx context.Context, handle string) (*models.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, repository.ErrProductNotFound
	}
	p, err := s.repository.GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %q: %w", handle, err)
	}
	return p, nil
}

// Search returns products whose title contains term; an empty term lists everything
func (s *ProductService) Search(ctx context.Context, term string) ([]models.Product, error) {
	products, err := s.repository.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return nonNil(products), nil
}

// ListByCollection returns the products of a collection
func (s *ProductService) ListByCollection(ctx context.Context, collectionHandle string) ([]models.Product, error) {
	products, err := s.repository.ListByCollection(ctx, strings.TrimSpace(collectionHandle))
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %q: %w", collectionHandle, err)
	}
	return nonNil(products), nil
}

// Query dispatches a gallery query. A missing handle yields an empty list.
func (s *ProductService) Query(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	switch {
	case strings.TrimSpace(q.Collection) != "":
		return s.ListByCollection(ctx, q.Collection)
	case strings.TrimSpace(q.Handle) != "":
		p, err := s.GetByHandle(ctx, q.Handle)
		if repository.IsNotFound(err) {
			s.logger.Debug("gallery handle not found", zap.String("handle", q.Handle))
			return []models.Product{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []models.Product{*p}, nil
	default:
		return s.Search(ctx, q.Search)
	}
}

// nonNil keeps JSON responses as [] instead of null
func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
