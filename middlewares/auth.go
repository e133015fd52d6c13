package middlewares

import (
	"net/http"
	"strings"

	"ecommerce-service/config"
	"ecommerce-service/models"
	"ecommerce-service/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 解析Bearer令牌，将{userID, role}放入请求上下文
// 缺失令牌返回401，无效/过期令牌返回403
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		userID, role, err := utils.ParseToken(cfg, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// AdminOnly 仅放行admin角色，需在AuthMiddleware之后使用
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}

// WebSocket客户端无法设置请求头，允许token查询参数兜底
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
