package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecommerce-service/models"
)

// In-memory implementations backing mock mode and the test suite.
// Same contracts as the MongoDB implementations, guarded by a RWMutex.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Count reports the number of stored users. Test helper.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]models.Product)}
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == product.SKU {
			return ErrDuplicateSKU
		}
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) ListAvailable(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := []models.Product{}
	for _, p := range r.products {
		if p.Status == models.ProductActive && p.Stock > 0 {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]models.Cart // keyed by user id
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]models.Cart)}
}

func (r *MemoryCartRepository) FindByUser(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	c.Items = append([]models.CartItem(nil), c.Items...)
	return &c, nil
}

func (r *MemoryCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	stored := *cart
	stored.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = stored
	return nil
}

func (r *MemoryCartRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	c.Items = []models.CartItem{}
	c.Total = 0
	c.UpdatedAt = time.Now()
	r.carts[userID] = c
	return nil
}

type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]models.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	stored.Items = append([]models.CartItem(nil), order.Items...)
	r.orders[order.ID] = stored
	return nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = append([]models.CartItem(nil), o.Items...)
	return &o, nil
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := []models.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

// Count reports the number of stored orders. Test helper.
func (r *MemoryOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

type MemoryShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]models.Shipment // keyed by order id
}

func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{shipments: make(map[string]models.Shipment)}
}

func (r *MemoryShipmentRepository) Create(_ context.Context, shipment *models.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	shipment.CreatedAt = now
	shipment.UpdatedAt = now
	stored := *shipment
	stored.History = append([]models.ShipmentHistory(nil), shipment.History...)
	r.shipments[shipment.OrderID] = stored
	return nil
}

func (r *MemoryShipmentRepository) Delete(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shipments[orderID]; !ok {
		return ErrNotFound
	}
	delete(r.shipments, orderID)
	return nil
}

func (r *MemoryShipmentRepository) FindByOrder(_ context.Context, orderID string) (*models.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shipments[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	s.History = append([]models.ShipmentHistory(nil), s.History...)
	return &s, nil
}

// Count reports the number of stored shipments. Test helper.
func (r *MemoryShipmentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shipments)
}

func (r *MemoryShipmentRepository) AppendStatus(_ context.Context, orderID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[orderID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	s.Status = status
	s.History = append(s.History, models.ShipmentHistory{Status: status, Timestamp: now})
	s.UpdatedAt = now
	r.shipments[orderID] = s
	return nil
}
