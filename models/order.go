package models

import "time"

const (
	StatusPending        = "pending"
	StatusPreparing      = "preparing"
	StatusInTransit      = "in_transit"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

type Order struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	UserID          string     `bson:"user_id" json:"userId"`
	Status          string     `bson:"status" json:"status"`
	Items           []CartItem `bson:"items" json:"items"`
	Total           float64    `bson:"total" json:"total"`
	TrackingNumber  string     `bson:"tracking_number" json:"trackingNumber"`
	ShippingAddress Address    `bson:"shipping_address" json:"shippingAddress"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updatedAt"`
}

type ShippingAddress struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CheckoutRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
}

type OrderEvent struct {
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id"`
	Type     string    `json:"type"` // created, status_updated, payment_check
	Status   string    `json:"status"`
	Total    float64   `json:"total"`
	Occurred time.Time `json:"occurred"`
}
