package consumers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ecommerce-service/config"
	"ecommerce-service/models"
	"ecommerce-service/repository"

	amqp "github.com/rabbitmq/amqp091-go"
)

func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config, orders repository.OrderRepository) {
	// 消费主订单队列
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"ecommerce-service", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register consumer: %v", err)
		return
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg, orders)
		}
	}()

	// 消费死信队列
	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"ecommerce-service-dlq", // consumer tag
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processOrderMessage(msg amqp.Delivery, orders repository.OrderRepository) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid event payload: %s", msg.Body)
		msg.Nack(false, false) // 拒绝消息，不重新入队
		return
	}

	log.Printf("Processing order event: ID=%s, Type=%s", event.OrderID, event.Type)

	// 根据事件类型处理
	switch event.Type {
	case "created":
		handleOrderCreated(event)
	case "status_updated":
		handleStatusUpdated(event)
	case "payment_check":
		handlePaymentCheck(event, orders)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	// 处理成功后确认消息
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack message: %v", err)
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	// 实际处理：记录到数据库、通知管理员等
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack dead letter: %v", err)
	}
}

func handleOrderCreated(event models.OrderEvent) {
	// 实际业务逻辑：通知其他服务、更新缓存等
	log.Printf("Handling order created: %s", event.OrderID)
}

func handleStatusUpdated(event models.OrderEvent) {
	log.Printf("Handling status update for order %s: %s", event.OrderID, event.Status)
}

// handlePaymentCheck 延迟事件到期时仍未支付的订单自动取消
func handlePaymentCheck(event models.OrderEvent, orders repository.OrderRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := orders.FindByID(ctx, event.OrderID)
	if err != nil {
		log.Printf("Failed to get order %s: %v", event.OrderID, err)
		return
	}

	if order.Status != models.StatusPending {
		return
	}

	if err := orders.UpdateStatus(ctx, order.ID, models.StatusCancelled); err != nil {
		log.Printf("Failed to auto-cancel order %s: %v", order.ID, err)
		return
	}
	log.Printf("Auto-cancelled order %s due to non-payment", order.ID)
}
