package service

import (
	"context"
	"errors"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidProductInput = errors.New("invalid product input")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductListOptions struct {
	Search   string
	Page     int
	PageSize int
}

// normalize clamps paging to sane bounds and returns limit and offset.
func (o ProductListOptions) normalize() (page, pageSize, offset int) {
	page, pageSize = o.Page, o.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type ProductService interface {
	ListProducts(ctx context.Context, opts ProductListOptions) (*ProductPage, error)
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(ctx context.Context, opts ProductListOptions) (*ProductPage, error) {
	page, pageSize, offset := opts.normalize()
	logger.Debug("Listing products", map[string]interface{}{
		"search":    opts.Search,
		"page":      page,
		"page_size": pageSize,
	})

	products, total, err := s.productRepo.FindWithFilter(ctx, repository.ProductFilter{
		Search: opts.Search,
		Limit:  pageSize,
		Offset: offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Info("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.Name == "" || product.Price < 0 || product.StockQuantity < 0 {
		return ErrInvalidProductInput
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}
