package controllers

import (
	"errors"
	"log"
	"net/http"

	"ecommerce-service/middlewares"
	"ecommerce-service/models"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductController struct {
	products repository.ProductRepository
}

func NewProductController(products repository.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// List 仅返回active且有库存的商品
func (pc *ProductController) List(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("product_list", status)
	}()

	products, err := pc.products.ListAvailable(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) Get(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("product_get", status)
	}()

	product, err := pc.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not available"})
			return
		}
		log.Printf("Failed to get product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	// 下架商品对外等同于不存在
	if product.Status != models.ProductActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not available"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) Create(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("product_create", status)
	}()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Price:       req.Price,
		Stock:       *req.Stock,
		Description: req.Description,
		Status:      models.ProductActive,
		SKU:         req.SKU,
		Images:      images,
		Category:    req.Category,
	}

	if err := pc.products.Create(c.Request.Context(), product); err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this SKU already exists"})
			return
		}
		log.Printf("Failed to create product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

func (pc *ProductController) Update(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("product_update", status)
	}()

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := pc.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Printf("Failed to get product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	// 仅应用请求中出现的字段
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Images != nil {
		product.Images = *req.Images
	}

	if err := pc.products.Update(c.Request.Context(), product); err != nil {
		log.Printf("Failed to update product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

func (pc *ProductController) Delete(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("product_delete", status)
	}()

	if err := pc.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Printf("Failed to delete product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
