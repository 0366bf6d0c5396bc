package core

import "context"

// UserStore 是用户记录的读接口。
//
// 设计原则：
//   - 用户记录由外部用户管理方拥有，引擎只读
//   - 定义在领域层（core），由外部协作方或内存实现提供
type UserStore interface {
	// GetUser 读取单个用户画像；不存在时返回 NOT_FOUND
	GetUser(ctx context.Context, userID string) (*UserProfile, error)

	// ListUsers 列出当前活跃用户（用于交互矩阵/Embedding 全量重建）
	ListUsers(ctx context.Context) ([]*UserProfile, error)
}

// CounterKind 是商品计数器类型，与交互事件类型一一对应。
type CounterKind string

const (
	CounterViews        CounterKind = "views"
	CounterPurchases    CounterKind = "purchases"
	CounterCartAdds     CounterKind = "cart_adds"
	CounterWishlistAdds CounterKind = "wishlist_adds"
)

// CounterKindFor 返回交互事件对应的商品计数器。
func CounterKindFor(kind InteractionKind) CounterKind {
	switch kind {
	case InteractionPurchase:
		return CounterPurchases
	case InteractionAddToCart:
		return CounterCartAdds
	case InteractionAddToWishlist:
		return CounterWishlistAdds
	default:
		return CounterViews
	}
}

// ProductStore 是商品记录的读接口，外加 Tracker 副作用所需的计数器写接口。
type ProductStore interface {
	// GetProduct 读取单个商品；不存在时返回 NOT_FOUND
	GetProduct(ctx context.Context, productID string) (*Product, error)

	// ListProducts 列出当前在售商品（用于全量重建与热门/兜底召回）
	ListProducts(ctx context.Context) ([]*Product, error)

	// IncrCounter 递增商品统计计数器（Tracker 的唯一写路径）
	IncrCounter(ctx context.Context, productID string, kind CounterKind) error
}

// Catalog 错误定义（使用统一的 DomainError）
var (
	// ErrUserNotFound 表示用户记录不存在
	ErrUserNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "catalog: user not found")

	// ErrProductNotFound 表示商品记录不存在
	ErrProductNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "catalog: product not found")
)
