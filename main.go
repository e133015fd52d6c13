package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ecommerce-service/config"
	"ecommerce-service/consumers"
	"ecommerce-service/controllers"
	"ecommerce-service/database"
	"ecommerce-service/middlewares"
	"ecommerce-service/rabbitmq"
	"ecommerce-service/relay"
	"ecommerce-service/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()

	var (
		users     repository.UserRepository
		products  repository.ProductRepository
		carts     repository.CartRepository
		orders    repository.OrderRepository
		shipments repository.ShipmentRepository
	)

	// 选择存储后端：mongo（默认）或 memory
	if cfg.StoreBackend == "memory" {
		users = repository.NewMemoryUserRepository()
		products = repository.NewMemoryProductRepository()
		carts = repository.NewMemoryCartRepository()
		orders = repository.NewMemoryOrderRepository()
		shipments = repository.NewMemoryShipmentRepository()
	} else {
		if err := database.InitDB(cfg); err != nil {
			log.Fatalf("Database initialization failed: %v", err)
		}
		defer database.CloseDB()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureIndexes(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to create indexes: %v", err)
		}
		cancel()

		users = repository.NewMongoUserRepository(database.DB)
		products = repository.NewMongoProductRepository(database.DB)
		carts = repository.NewMongoCartRepository(database.DB)
		orders = repository.NewMongoOrderRepository(database.DB)
		shipments = repository.NewMongoShipmentRepository(database.DB)
	}

	// 购物车读缓存（可选）
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		carts = repository.NewCachedCartRepository(carts, rdb)
	}

	// 初始化RabbitMQ（可选）
	var rmq *rabbitmq.RabbitMQ
	if cfg.RabbitMQURL != "" {
		var err error
		rmq, err = rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatalf("RabbitMQ initialization failed: %v", err)
		}
		defer rmq.Close()

		// 设置队列和交换机
		if err := rmq.SetupQueues(); err != nil {
			log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
		}

		// 启动消息消费者
		consumers.StartOrderConsumer(rmq.Channel, cfg, orders)
	}

	// 通知中继
	hub := relay.NewHub()
	go hub.Run()
	defer hub.Stop()

	userCtrl := controllers.NewUserController(cfg, users)
	productCtrl := controllers.NewProductController(products)
	cartCtrl := controllers.NewCartController(carts, products)
	orderCtrl := controllers.NewOrderController(cfg, orders, carts, shipments, rmq)
	shipmentCtrl := controllers.NewShipmentController(shipments, orders, hub, rmq)

	// 创建Gin路由
	r := gin.Default()

	// 应用Prometheus中间件
	r.Use(middlewares.PrometheusMiddleware())

	// 暴露Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// 公开路由
	api.POST("/users/register", userCtrl.Register)
	api.POST("/users/login", userCtrl.Login)
	api.GET("/products", productCtrl.List)
	api.GET("/products/:id", productCtrl.Get)
	api.GET("/shipments/:orderId/tracking", shipmentCtrl.GetTracking)

	// 需要认证的路由组
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(cfg))
	{
		auth.GET("/users/:id", userCtrl.GetProfile)
		auth.GET("/cart", cartCtrl.Get)
		auth.POST("/cart/items", cartCtrl.AddItem)
		auth.PUT("/cart/items/:id", cartCtrl.UpdateItem)
		auth.DELETE("/cart/items/:id", cartCtrl.RemoveItem)
		auth.POST("/orders/checkout", orderCtrl.Checkout)
		auth.GET("/orders", orderCtrl.GetUserOrders)
		auth.GET("/orders/:id", orderCtrl.GetOrderDetails)
		auth.GET("/ws", relay.ServeWS(hub))
	}

	// 管理员路由组
	admin := auth.Group("")
	admin.Use(middlewares.AdminOnly())
	{
		admin.POST("/products", productCtrl.Create)
		admin.PUT("/products/:id", productCtrl.Update)
		admin.DELETE("/products/:id", productCtrl.Delete)
		admin.PUT("/shipments/:orderId", shipmentCtrl.UpdateStatus)
	}

	// 死信队列处理端点
	r.POST("/dead-letter", orderCtrl.HandleDeadLetter)

	// 启动服务器
	log.Printf("E-commerce service starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
