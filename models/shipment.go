package models

import "time"

type ShipmentHistory struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type Shipment struct {
	ID             string            `bson:"_id,omitempty" json:"id"`
	OrderID        string            `bson:"order_id" json:"orderId"`
	UserID         string            `bson:"user_id" json:"userId"`
	TrackingNumber string            `bson:"tracking_number" json:"trackingNumber"`
	Status         string            `bson:"status" json:"status"`
	History        []ShipmentHistory `bson:"history" json:"history"` // 只追加，每次状态变更一条
	CreatedAt      time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updatedAt"`
}

type UpdateShipmentRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing in_transit out_for_delivery delivered cancelled"`
}
