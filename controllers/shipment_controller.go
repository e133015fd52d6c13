package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ecommerce-service/middlewares"
	"ecommerce-service/models"
	"ecommerce-service/rabbitmq"
	"ecommerce-service/relay"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
)

type ShipmentController struct {
	shipments repository.ShipmentRepository
	orders    repository.OrderRepository
	hub       *relay.Hub
	rmq       *rabbitmq.RabbitMQ // 可为nil（禁用消息队列时）
}

func NewShipmentController(
	shipments repository.ShipmentRepository,
	orders repository.OrderRepository,
	hub *relay.Hub,
	rmq *rabbitmq.RabbitMQ,
) *ShipmentController {
	return &ShipmentController{
		shipments: shipments,
		orders:    orders,
		hub:       hub,
		rmq:       rmq,
	}
}

// GetTracking 公开接口，按订单号查运单及其历史
func (sc *ShipmentController) GetTracking(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("shipment_tracking", status)
	}()

	shipment, err := sc.shipments.FindByOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tracking information not found"})
			return
		}
		log.Printf("Failed to get shipment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tracking information"})
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// UpdateStatus 管理员更新运单状态：校验枚举值，追加历史，
// 同步订单状态并向用户频道推送 shipmentUpdated 事件
// 状态迁移不校验先后顺序，只校验枚举合法性
func (sc *ShipmentController) UpdateStatus(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOperation("shipment_update", status)
	}()

	var req models.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 非法状态值到不了存储层，已存状态保持不变
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	orderID := c.Param("orderId")

	shipment, err := sc.shipments.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
			return
		}
		log.Printf("Failed to get shipment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shipment"})
		return
	}

	if err := sc.shipments.AppendStatus(ctx, orderID, req.Status); err != nil {
		log.Printf("Failed to update shipment status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shipment"})
		return
	}

	// 订单状态域与运单一致，保持两边同步
	if err := sc.orders.UpdateStatus(ctx, orderID, req.Status); err != nil {
		log.Printf("Failed to mirror status to order %s: %v", orderID, err)
	}

	shipment.Status = req.Status
	shipment.History = append(shipment.History, models.ShipmentHistory{
		Status:    req.Status,
		Timestamp: time.Now(),
	})

	// 实时通知订单所属用户
	sc.hub.EmitShipmentUpdated(shipment.UserID, orderID, req.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Shipment status updated", "shipment": shipment})

	if sc.rmq != nil {
		priority := 5                             // 默认优先级
		if req.Status == models.StatusCancelled { // 取消高优先级
			priority = 8
		}

		event := models.OrderEvent{
			OrderID:  orderID,
			UserID:   shipment.UserID,
			Type:     "status_updated",
			Status:   req.Status,
			Occurred: time.Now(),
		}
		if err := sc.rmq.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish status updated event: %v", err)
		}
	}
}
