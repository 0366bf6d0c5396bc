// Package catalog 提供 core.UserStore / core.ProductStore 的内存实现，
// 用于测试/开发/原型。生产部署通常由外部用户/商品服务适配这两个接口。
package catalog

import (
	"context"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// MemoryCatalog 是内存实现的用户/商品目录。
// 引擎对用户/商品记录只读；商品计数器是唯一例外（Tracker 副作用）。
type MemoryCatalog struct {
	mu       sync.RWMutex
	users    map[string]*core.UserProfile
	products map[string]*core.Product
	order    []string // 商品插入顺序，保证 ListProducts 确定性
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		users:    make(map[string]*core.UserProfile),
		products: make(map[string]*core.Product),
	}
}

// PutUser 写入/覆盖用户画像（测试/同步用，引擎本身不调用）。
func (c *MemoryCatalog) PutUser(u *core.UserProfile) {
	if u == nil || u.UserID == "" {
		return
	}
	c.mu.Lock()
	c.users[u.UserID] = u
	c.mu.Unlock()
}

// PutProduct 写入/覆盖商品记录（测试/同步用，引擎本身不调用）。
func (c *MemoryCatalog) PutProduct(p *core.Product) {
	if p == nil || p.ID == "" {
		return
	}
	c.mu.Lock()
	if _, ok := c.products[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = p
	c.mu.Unlock()
}

// 读接口全部返回副本：IncrCounter 的并发写只作用于内部记录，
// 已返回的快照不受后续计数影响。
func (c *MemoryCatalog) GetUser(_ context.Context, userID string) (*core.UserProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (c *MemoryCatalog) ListUsers(_ context.Context) ([]*core.UserProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.UserProfile, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (c *MemoryCatalog) GetProduct(_ context.Context, productID string) (*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, core.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (c *MemoryCatalog) ListProducts(_ context.Context) ([]*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneProduct(c.products[id]))
	}
	return out, nil
}

func (c *MemoryCatalog) IncrCounter(_ context.Context, productID string, kind core.CounterKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return core.ErrProductNotFound
	}
	switch kind {
	case core.CounterPurchases:
		p.Analytics.Purchases++
	case core.CounterCartAdds:
		p.Analytics.CartAdds++
	case core.CounterWishlistAdds:
		p.Analytics.WishlistAdds++
	default:
		p.Analytics.Views++
	}
	return nil
}

func cloneProduct(p *core.Product) *core.Product {
	cp := *p
	cp.Attributes.Colors = append([]string(nil), p.Attributes.Colors...)
	cp.Attributes.Sizes = append([]string(nil), p.Attributes.Sizes...)
	cp.Attributes.Materials = append([]string(nil), p.Attributes.Materials...)
	cp.Attributes.Seasons = append([]core.Season(nil), p.Attributes.Seasons...)
	cp.Attributes.Features = append([]string(nil), p.Attributes.Features...)
	return &cp
}

func cloneUser(u *core.UserProfile) *core.UserProfile {
	cu := *u
	cu.PreferredCategories = append([]string(nil), u.PreferredCategories...)
	cu.PreferredBrands = append([]string(nil), u.PreferredBrands...)
	return &cu
}

var (
	_ core.UserStore    = (*MemoryCatalog)(nil)
	_ core.ProductStore = (*MemoryCatalog)(nil)
)
