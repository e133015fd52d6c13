package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"ecommerce-service/config"
	"ecommerce-service/middlewares"
	"ecommerce-service/models"
	"ecommerce-service/relay"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	cfg       *config.Config
	users     *repository.MemoryUserRepository
	products  *repository.MemoryProductRepository
	carts     *repository.MemoryCartRepository
	orders    *repository.MemoryOrderRepository
	shipments *repository.MemoryShipmentRepository
	hub       *relay.Hub
}

// newTestEnv wires the full route table against in-memory repositories,
// with the auth middleware replaced by a stub that injects the given
// principal. RabbitMQ stays nil, as in a deployment without a broker.
func newTestEnv(t *testing.T, userID, role string) *testEnv {
	t.Helper()

	env := &testEnv{
		cfg:       config.LoadConfig(),
		users:     repository.NewMemoryUserRepository(),
		products:  repository.NewMemoryProductRepository(),
		carts:     repository.NewMemoryCartRepository(),
		orders:    repository.NewMemoryOrderRepository(),
		shipments: repository.NewMemoryShipmentRepository(),
		hub:       relay.NewHub(),
	}
	go env.hub.Run()
	t.Cleanup(env.hub.Stop)

	userCtrl := NewUserController(env.cfg, env.users)
	productCtrl := NewProductController(env.products)
	cartCtrl := NewCartController(env.carts, env.products)
	orderCtrl := NewOrderController(env.cfg, env.orders, env.carts, env.shipments, nil)
	shipmentCtrl := NewShipmentController(env.shipments, env.orders, env.hub, nil)

	stubAuth := func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/users/register", userCtrl.Register)
	api.POST("/users/login", userCtrl.Login)
	api.GET("/products", productCtrl.List)
	api.GET("/products/:id", productCtrl.Get)
	api.GET("/shipments/:orderId/tracking", shipmentCtrl.GetTracking)

	auth := api.Group("")
	auth.Use(stubAuth)
	auth.GET("/users/:id", userCtrl.GetProfile)
	auth.GET("/cart", cartCtrl.Get)
	auth.POST("/cart/items", cartCtrl.AddItem)
	auth.PUT("/cart/items/:id", cartCtrl.UpdateItem)
	auth.DELETE("/cart/items/:id", cartCtrl.RemoveItem)
	auth.POST("/orders/checkout", orderCtrl.Checkout)
	auth.GET("/orders", orderCtrl.GetUserOrders)
	auth.GET("/orders/:id", orderCtrl.GetOrderDetails)

	admin := auth.Group("")
	admin.Use(middlewares.AdminOnly())
	admin.POST("/products", productCtrl.Create)
	admin.PUT("/products/:id", productCtrl.Update)
	admin.DELETE("/products/:id", productCtrl.Delete)
	admin.PUT("/shipments/:orderId", shipmentCtrl.UpdateStatus)

	env.router = r
	return env
}

func (env *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (env *testEnv) seedProduct(t *testing.T, id, status string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Stock:    stock,
		Status:   status,
		SKU:      "SKU-" + id,
		Images:   []string{},
		Category: "test",
	}
	require.NoError(t, env.products.Create(context.Background(), product))
	return product
}

func (env *testEnv) seedShipment(t *testing.T, orderID, userID, status string) *models.Shipment {
	t.Helper()
	shipment := &models.Shipment{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		UserID:         userID,
		TrackingNumber: "TRK-" + orderID,
		Status:         status,
		History: []models.ShipmentHistory{
			{Status: status, Timestamp: time.Now()},
		},
	}
	require.NoError(t, env.shipments.Create(context.Background(), shipment))
	return shipment
}

var validAddress = models.ShippingAddress{
	Street: "Av. Siempre Viva 742",
	City:   "Springfield",
}

func checkoutBody() map[string]any {
	return map[string]any{"shippingAddress": validAddress}
}
