package database

import (
	"context"
	"fmt"
	"time"

	"ecommerce-service/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client *mongo.Client

	// DB 全局数据库句柄，InitDB 之后可用
	DB *mongo.Database
)

func InitDB(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	c, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	client = c
	DB = c.Database(cfg.DBName)
	return nil
}

// EnsureIndexes 创建唯一索引，写入时保证email/sku/trackingNumber唯一
func EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string]mongo.IndexModel{
		"users":     {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		"products":  {Keys: bson.D{{Key: "sku", Value: 1}}, Options: unique},
		"carts":     {Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		"orders":    {Keys: bson.D{{Key: "tracking_number", Value: 1}}, Options: unique},
		"shipments": {Keys: bson.D{{Key: "order_id", Value: 1}}, Options: unique},
	}

	for collection, index := range indexes {
		if _, err := DB.Collection(collection).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", collection, err)
		}
	}
	return nil
}

func CloseDB() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}
