package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type ctxKey string

// ShopIDKey is the context key for the shop a request is served from
const ShopIDKey ctxKey = "shop_id"

// WithShop adds the shop id to context. An empty id clears the scope.
func WithShop(ctx context.Context, shopID string) context.Context {
	return context.WithValue(ctx, ShopIDKey, strings.TrimSpace(shopID))
}

// GetShopID extracts the shop id from context
func GetShopID(ctx context.Context) (string, bool) {
	shopID, ok := ctx.Value(ShopIDKey).(string)
	if !ok || shopID == "" {
		return "", false
	}
	return shopID, true
}

// ShopScope returns a GORM scope that narrows queries to the shop in ctx.
// Without a shop in ctx the query is left untouched: a single-counter
// install never sets one.
func ShopScope(ctx context.Context, column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		shopID, ok := GetShopID(ctx)
		if !ok {
			return db
		}
		return db.Where(column+" = ?", shopID)
	}
}

// likePattern builds a case-insensitive LIKE pattern that works on both
// postgres and sqlite when compared against LOWER(column).
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
