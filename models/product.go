package models

import "time"

const (
	ProductActive       = "active"
	ProductDiscontinued = "discontinued"
)

type Product struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	Stock       int       `bson:"stock" json:"stock"`
	Description string    `bson:"description" json:"description"`
	Status      string    `bson:"status" json:"status"`
	SKU         string    `bson:"sku" json:"sku"`
	Images      []string  `bson:"images" json:"images"`
	Category    string    `bson:"category" json:"category"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       *int     `json:"stock" binding:"required,gte=0"`
	Description string   `json:"description"`
	SKU         string   `json:"sku" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Images      []string `json:"images"`
}

// UpdateProductRequest 部分更新，仅应用非空字段
type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price" binding:"omitempty,gt=0"`
	Stock       *int      `json:"stock" binding:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,oneof=active discontinued"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
}
