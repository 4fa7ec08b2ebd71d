package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	infraRepo "github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
)

// ShopIDHeader names the counter a request is made from
const ShopIDHeader = "X-Shop-ID"

const maxShopIDLength = 100

// ShopMiddleware reads the shop id header and scopes the request to it.
// Requests without the header see every shop.
func ShopMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := strings.TrimSpace(c.GetHeader(ShopIDHeader))
		if shopID == "" {
			c.Next()
			return
		}
		if len(shopID) > maxShopIDLength {
			response.BadRequest(c, "Invalid shop id")
			c.Abort()
			return
		}

		// Gin context for handlers, request context for repositories
		c.Set("shop_id", shopID)
		c.Request = c.Request.WithContext(infraRepo.WithShop(c.Request.Context(), shopID))

		c.Next()
	}
}

// GetShopID retrieves the shop id from gin context
func GetShopID(c *gin.Context) string {
	shopID, exists := c.Get("shop_id")
	if !exists {
		return ""
	}
	id, _ := shopID.(string)
	return id
}
