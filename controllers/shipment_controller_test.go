package controllers

import (
	"context"
	"net/http"
	"testing"

	"ecommerce-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTracking(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)
	env.seedShipment(t, "order-1", "user-1", models.StatusPending)

	w := env.request(t, http.MethodGet, "/api/v1/shipments/order-1/tracking", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var shipment models.Shipment
	decodeBody(t, w, &shipment)
	assert.Equal(t, "TRK-order-1", shipment.TrackingNumber)
	assert.Equal(t, models.StatusPending, shipment.Status)
	require.Len(t, shipment.History, 1)

	w = env.request(t, http.MethodGet, "/api/v1/shipments/missing/tracking", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateShipmentStatusAppendsHistory(t *testing.T) {
	env := newTestEnv(t, "admin-1", models.RoleAdmin)
	env.seedShipment(t, "order-1", "user-1", models.StatusPending)
	require.NoError(t, env.orders.Create(context.Background(), &models.Order{
		ID:     "order-1",
		UserID: "user-1",
		Status: models.StatusPending,
	}))

	w := env.request(t, http.MethodPut, "/api/v1/shipments/order-1", models.UpdateShipmentRequest{
		Status: models.StatusInTransit,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message  string          `json:"message"`
		Shipment models.Shipment `json:"shipment"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, models.StatusInTransit, resp.Shipment.Status)
	require.Len(t, resp.Shipment.History, 2)
	assert.Equal(t, models.StatusInTransit, resp.Shipment.History[1].Status)

	// 订单状态同步更新
	order, err := env.orders.FindByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, order.Status)
}

// 枚举外的状态值在绑定层就被拒，存储的状态和历史都不变
func TestUpdateShipmentStatusInvalidValue(t *testing.T) {
	env := newTestEnv(t, "admin-1", models.RoleAdmin)
	env.seedShipment(t, "order-1", "user-1", models.StatusPending)

	w := env.request(t, http.MethodPut, "/api/v1/shipments/order-1", map[string]any{
		"status": "SHIPPED",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	shipment, err := env.shipments.FindByOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, shipment.Status)
	assert.Len(t, shipment.History, 1)
}

func TestUpdateShipmentStatusUnknownOrder(t *testing.T) {
	env := newTestEnv(t, "admin-1", models.RoleAdmin)

	w := env.request(t, http.MethodPut, "/api/v1/shipments/missing", models.UpdateShipmentRequest{
		Status: models.StatusDelivered,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateShipmentStatusRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, "user-1", models.RoleUser)
	env.seedShipment(t, "order-1", "user-1", models.StatusPending)

	w := env.request(t, http.MethodPut, "/api/v1/shipments/order-1", models.UpdateShipmentRequest{
		Status: models.StatusDelivered,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

// 状态迁移不限制先后顺序，delivered之后仍可标记cancelled
func TestUpdateShipmentStatusNoTransitionOrdering(t *testing.T) {
	env := newTestEnv(t, "admin-1", models.RoleAdmin)
	env.seedShipment(t, "order-1", "user-1", models.StatusDelivered)

	w := env.request(t, http.MethodPut, "/api/v1/shipments/order-1", models.UpdateShipmentRequest{
		Status: models.StatusCancelled,
	})
	require.Equal(t, http.StatusOK, w.Code)

	shipment, err := env.shipments.FindByOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, shipment.Status)
}
