package repository

import (
	"context"
	"testing"
	"time"

	"ecommerce-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepositoryUniqueEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Email: "a@example.com"}))
	err := repo.Create(ctx, &models.User{ID: "u2", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, repo.Count())

	user, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = repo.FindByEmail(ctx, "b@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProductRepositoryUniqueSKU(t *testing.T) {
	repo := NewMemoryProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p1", SKU: "LAP-001", Status: models.ProductActive, Stock: 1}))
	err := repo.Create(ctx, &models.Product{ID: "p2", SKU: "LAP-001"})
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestMemoryProductRepositoryListAvailable(t *testing.T) {
	repo := NewMemoryProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p1", Name: "B", SKU: "S1", Status: models.ProductActive, Stock: 1}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p2", Name: "A", SKU: "S2", Status: models.ProductActive, Stock: 1}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p3", Name: "C", SKU: "S3", Status: models.ProductDiscontinued, Stock: 1}))
	require.NoError(t, repo.Create(ctx, &models.Product{ID: "p4", Name: "D", SKU: "S4", Status: models.ProductActive, Stock: 0}))

	products, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Name)
	assert.Equal(t, "B", products[1].Name)
}

func TestMemoryCartRepositorySaveIsUpsert(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	_, err := repo.FindByUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	cart := &models.Cart{ID: "c1", UserID: "u1", Items: []models.CartItem{{ProductID: "p1", Quantity: 1, PriceAtPurchase: 10}}}
	cart.RecalculateTotal()
	require.NoError(t, repo.Save(ctx, cart))

	cart.Items[0].Quantity = 3
	cart.RecalculateTotal()
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Total)
	require.Len(t, got.Items, 1)

	// 返回的是副本，改它不影响存储
	got.Items[0].Quantity = 99
	again, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Items[0].Quantity)
}

func TestMemoryCartRepositoryClear(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Clear(ctx, "u1"), ErrCartNotFound)

	cart := &models.Cart{ID: "c1", UserID: "u1", Items: []models.CartItem{{ProductID: "p1", Quantity: 1, PriceAtPurchase: 10}}, Total: 10}
	require.NoError(t, repo.Save(ctx, cart))
	require.NoError(t, repo.Clear(ctx, "u1"))

	got, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.Total)
}

func TestMemoryOrderRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Order{ID: "o1", UserID: "u1"}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Create(ctx, &models.Order{ID: "o2", UserID: "u1"}))
	require.NoError(t, repo.Create(ctx, &models.Order{ID: "o3", UserID: "u2"}))

	orders, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, "o1", orders[1].ID)
}

func TestMemoryOrderRepositoryUpdateStatus(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.StatusCancelled), ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Order{ID: "o1", UserID: "u1", Status: models.StatusPending}))
	require.NoError(t, repo.UpdateStatus(ctx, "o1", models.StatusDelivered))

	order, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, order.Status)
}

func TestMemoryShipmentRepositoryAppendStatus(t *testing.T) {
	repo := NewMemoryShipmentRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.AppendStatus(ctx, "missing", models.StatusPreparing), ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Shipment{
		ID:      "s1",
		OrderID: "o1",
		UserID:  "u1",
		Status:  models.StatusPending,
		History: []models.ShipmentHistory{{Status: models.StatusPending, Timestamp: time.Now()}},
	}))

	require.NoError(t, repo.AppendStatus(ctx, "o1", models.StatusPreparing))
	require.NoError(t, repo.AppendStatus(ctx, "o1", models.StatusInTransit))

	shipment, err := repo.FindByOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, shipment.Status)
	require.Len(t, shipment.History, 3)
	assert.Equal(t, models.StatusPending, shipment.History[0].Status)
	assert.Equal(t, models.StatusInTransit, shipment.History[2].Status)
}

func TestMemoryShipmentRepositoryDelete(t *testing.T) {
	repo := NewMemoryShipmentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Shipment{ID: "s1", OrderID: "o1"}))
	require.NoError(t, repo.Delete(ctx, "o1"))
	assert.ErrorIs(t, repo.Delete(ctx, "o1"), ErrNotFound)

	_, err := repo.FindByOrder(ctx, "o1")
	assert.ErrorIs(t, err, ErrNotFound)
}
