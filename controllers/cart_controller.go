package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"ecommerce-service/middlewares"
	"ecommerce-service/models"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartController struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartController(carts repository.CartRepository, products repository.ProductRepository) *CartController {
	return &CartController{carts: carts, products: products}
}

// 没有购物车时惰性创建一个空车
func (cc *CartController) getOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := cc.carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	cart = &models.Cart{
		ID:     uuid.NewString(),
		UserID: userID,
		Items:  []models.CartItem{},
		Total:  0,
	}
	if err := cc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (cc *CartController) Get(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("cart_get", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cart, err := cc.getOrCreateCart(c.Request.Context(), userID.(string))
	if err != nil {
		log.Printf("Failed to get cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) AddItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("cart_add_item", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 商品必须存在、在售且库存充足，否则购物车保持不变
	product, err := cc.products.FindByID(c.Request.Context(), req.ProductID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("Failed to get product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}
	if err != nil || product.Status != models.ProductActive || product.Stock < req.Quantity {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not available"})
		return
	}

	cart, err := cc.getOrCreateCart(c.Request.Context(), userID.(string))
	if err != nil {
		log.Printf("Failed to get cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	if item := cart.FindItem(req.ProductID); item != nil {
		item.Quantity += req.Quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:       req.ProductID,
			Quantity:        req.Quantity,
			PriceAtPurchase: product.Price,
		})
	}
	cart.RecalculateTotal()

	if err := cc.carts.Save(c.Request.Context(), cart); err != nil {
		log.Printf("Failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("cart_update_item", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := cc.carts.FindByUser(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		log.Printf("Failed to get cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	item := cart.FindItem(c.Param("id"))
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	item.Quantity = req.Quantity
	cart.RecalculateTotal()

	if err := cc.carts.Save(c.Request.Context(), cart); err != nil {
		log.Printf("Failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item quantity updated", "cart": cart})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("cart_remove_item", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cart, err := cc.carts.FindByUser(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		log.Printf("Failed to get cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	productID := c.Param("id")
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items
	cart.RecalculateTotal()

	if err := cc.carts.Save(c.Request.Context(), cart); err != nil {
		log.Printf("Failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cart})
}
