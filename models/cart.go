package models

import "time"

type CartItem struct {
	ProductID       string  `bson:"product_id" json:"productId"`
	Quantity        int     `bson:"quantity" json:"quantity"`
	PriceAtPurchase float64 `bson:"price_at_purchase" json:"priceAtPurchase"`
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	Total     float64    `bson:"total" json:"total"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

// RecalculateTotal 每次变更后重新计算总价
func (c *Cart) RecalculateTotal() {
	total := 0.0
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.PriceAtPurchase
	}
	c.Total = total
}

// FindItem 按商品ID查找购物车条目
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}
