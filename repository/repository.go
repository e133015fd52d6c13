package repository

import (
	"context"
	"errors"

	"ecommerce-service/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrDuplicateSKU = errors.New("sku already exists")
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// UserRepository defines the interface for user data operations
// Consumers define this interface, not the MongoDB implementation
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error // ErrEmailTaken on duplicate email
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error // ErrDuplicateSKU on duplicate sku
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	ListAvailable(ctx context.Context) ([]models.Product, error) // active and stock > 0
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Cart, error) // ErrCartNotFound
	Save(ctx context.Context, cart *models.Cart) error                   // upsert keyed by user
	Clear(ctx context.Context, userID string) error                      // empty items, total = 0
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error) // newest first
	UpdateStatus(ctx context.Context, id, status string) error
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	Delete(ctx context.Context, orderID string) error
	FindByOrder(ctx context.Context, orderID string) (*models.Shipment, error)
	AppendStatus(ctx context.Context, orderID, status string) error // set status + append history entry
}
