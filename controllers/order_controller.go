package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"ecommerce-service/config"
	"ecommerce-service/middlewares"
	"ecommerce-service/models"
	"ecommerce-service/rabbitmq"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	cfg       *config.Config
	orders    repository.OrderRepository
	carts     repository.CartRepository
	shipments repository.ShipmentRepository
	rmq       *rabbitmq.RabbitMQ // 可为nil（禁用消息队列时）
}

func NewOrderController(
	cfg *config.Config,
	orders repository.OrderRepository,
	carts repository.CartRepository,
	shipments repository.ShipmentRepository,
	rmq *rabbitmq.RabbitMQ,
) *OrderController {
	return &OrderController{
		cfg:       cfg,
		orders:    orders,
		carts:     carts,
		shipments: shipments,
		rmq:       rmq,
	}
}

// Checkout 把购物车内容转成订单和对应的运单，然后清空购物车
// 三次写之间没有事务，后续写失败时删除已建文档做补偿
func (oc *OrderController) Checkout(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("checkout", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cart, err := oc.carts.FindByUser(ctx, userID.(string))
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("Failed to get cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to checkout"})
		return
	}
	if err != nil || len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         userID.(string),
		Status:         models.StatusPending,
		Items:          append([]models.CartItem(nil), cart.Items...),
		Total:          cart.Total,
		TrackingNumber: "TRK-" + uuid.NewString(),
		ShippingAddress: models.Address{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}

	if err := oc.orders.Create(ctx, order); err != nil {
		log.Printf("Failed to create order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to checkout"})
		return
	}

	shipment := &models.Shipment{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		UserID:         order.UserID,
		TrackingNumber: order.TrackingNumber,
		Status:         models.StatusPending,
		History: []models.ShipmentHistory{
			{Status: models.StatusPending, Timestamp: time.Now()},
		},
	}
	if err := oc.shipments.Create(ctx, shipment); err != nil {
		log.Printf("Failed to create shipment, compensating order %s: %v", order.ID, err)
		oc.compensate(order.ID, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to checkout"})
		return
	}

	if err := oc.carts.Clear(ctx, cart.UserID); err != nil {
		log.Printf("Failed to clear cart, compensating order %s: %v", order.ID, err)
		oc.compensate(order.ID, true)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to checkout"})
		return
	}

	c.JSON(http.StatusCreated, order)

	// 订单落库成功后发送事件
	if oc.rmq != nil {
		priority := orderEventPriority(oc.cfg, order.Total)

		event := models.OrderEvent{
			OrderID:  order.ID,
			UserID:   order.UserID,
			Type:     "created",
			Status:   order.Status,
			Total:    order.Total,
			Occurred: time.Now(),
		}
		if err := oc.rmq.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		// 延迟事件：到期检查支付状态，未支付则自动取消
		event.Type = "payment_check"
		if err := oc.rmq.PublishDelayedEvent(event, oc.cfg.PaymentCheckDelay); err != nil {
			log.Printf("Failed to publish delayed payment check event: %v", err)
		}
	}
}

// 大额订单事件走高优先级，金额阈值可配置
func orderEventPriority(cfg *config.Config, total float64) int {
	if total > cfg.HighValueTotal {
		return 9
	}
	return 5
}

// 补偿动作尽力而为，失败只记日志
func (oc *OrderController) compensate(orderID string, withShipment bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if withShipment {
		if err := oc.shipments.Delete(ctx, orderID); err != nil {
			log.Printf("Compensation failed, orphan shipment for order %s: %v", orderID, err)
		}
	}
	if err := oc.orders.Delete(ctx, orderID); err != nil {
		log.Printf("Compensation failed, orphan order %s: %v", orderID, err)
	}
}

func (oc *OrderController) GetUserOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("order_list", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orders, err := oc.orders.ListByUser(c.Request.Context(), userID.(string))
	if err != nil {
		log.Printf("Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (oc *OrderController) GetOrderDetails(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("order_details", status)
	}()
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	order, err := oc.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("Failed to get order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}

	// 他人的订单等同于不存在
	if order.UserID != userID.(string) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// HandleDeadLetter 死信队列处理函数
func (oc *OrderController) HandleDeadLetter(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("dead_letter", status)
	}()

	var deadLetter struct {
		OrderID string `json:"order_id"`
		Reason  string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&deadLetter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Handling dead letter for order %s: %s", deadLetter.OrderID, deadLetter.Reason)

	// 实际处理逻辑：记录、通知管理员等
	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
