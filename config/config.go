package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	StoreBackend      string // mongo 或 memory
	RedisAddr         string // 为空时禁用购物车缓存
	JWTSecret         string
	TokenTTL          time.Duration
	RabbitMQURL       string // 为空时禁用消息队列
	OrderExchange     string
	OrderQueue        string
	DeadLetterQueue   string
	DelayExchange     string
	MaxPriority       int
	PaymentCheckDelay time.Duration
	HighValueTotal    float64 // 超过该金额的订单事件走高优先级
}

func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnvFromFile("MONGO_URI_FILE", "MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "ecommerce"),
		StoreBackend:      getEnv("STORE_BACKEND", "mongo"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		JWTSecret:         getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "G9mCQ19ogTkuWQY9jH2wGZASuGi/JrhstQaZy4k/01o="),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 2*time.Hour),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		OrderExchange:     getEnv("ORDER_EXCHANGE", "orders_exchange"),
		OrderQueue:        getEnv("ORDER_QUEUE", "orders_queue"),
		DeadLetterQueue:   getEnv("DEAD_LETTER_QUEUE", "dead_letter_queue"),
		DelayExchange:     getEnv("DELAY_EXCHANGE", "delay_exchange"),
		MaxPriority:       10, // 优先级队列最大优先级
		PaymentCheckDelay: getEnvDuration("PAYMENT_CHECK_DELAY", 15*time.Minute),
		HighValueTotal:    getEnvFloat("HIGH_VALUE_TOTAL", 1000000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
