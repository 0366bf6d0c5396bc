package core

import "time"

// InteractionKind 是交互事件类型。
type InteractionKind string

const (
	InteractionView          InteractionKind = "view"
	InteractionPurchase      InteractionKind = "purchase"
	InteractionAddToCart     InteractionKind = "add_to_cart"
	InteractionAddToWishlist InteractionKind = "add_to_wishlist"
)

// Valid 检查交互类型是否为已知类型。
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionView, InteractionPurchase, InteractionAddToCart, InteractionAddToWishlist:
		return true
	}
	return false
}

// Interaction 是一次用户-商品交互事件。
// 追加写、不可变；每用户仅保留最近 N 条（默认 100）以约束内存。
type Interaction struct {
	UserID    string
	ProductID string
	Kind      InteractionKind
	Timestamp time.Time
	Duration  time.Duration // 可选：停留时长（view 事件常见），缺省为 0
}
