package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoShipmentRepository struct {
	collection *mongo.Collection
}

func NewMongoShipmentRepository(db *mongo.Database) ShipmentRepository {
	return &mongoShipmentRepository{collection: db.Collection("shipments")}
}

func (m *mongoShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	now := time.Now()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, shipment)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

func (m *mongoShipmentRepository) Delete(ctx context.Context, orderID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoShipmentRepository) FindByOrder(ctx context.Context, orderID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := m.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&shipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return &shipment, nil
}

func (m *mongoShipmentRepository) AppendStatus(ctx context.Context, orderID, status string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": now,
		},
		"$push": bson.M{
			"history": models.ShipmentHistory{Status: status, Timestamp: now},
		},
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
