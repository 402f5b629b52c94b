package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/service"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ListProductsQuery struct {
	Search   string `form:"search"`
	Page     *int   `form:"page" binding:"omitempty,min=1"`
	PageSize *int   `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	MainImage   string  `json:"mainImage"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// intOrZero leaves absent paging params to the service defaults.
func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// GetAllProducts returns a page of products
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.BindingFailed(c, err)
		return
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), service.ProductListOptions{
		Search:   query.Search,
		Page:     intOrZero(query.Page),
		PageSize: intOrZero(query.PageSize),
	})
	if err != nil {
		log.Error("Failed to fetch products", err)
		apperrors.ServerError(c, err, "fetch products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ServerError(c, err, "fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a new product (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		MainImage:     req.MainImage,
		StockQuantity: req.Stock,
	}

	if err := ctrl.productService.CreateProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, service.ErrInvalidProductInput) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ServerError(c, err, "create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}
