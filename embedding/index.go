// Package embedding 维护一代用户/商品 Embedding 索引。
package embedding

import (
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
)

// Index 是一代 Embedding 的只读快照：用户与商品向量按 id 索引，维度一致。
// 构建完成后不再修改；换代由持有方整体原子替换，在途读请求
// 要么看到完整的旧代，要么看到完整的新代。
type Index struct {
	Users      map[string]feature.Vector
	Products   map[string]feature.Vector
	ProductIDs []string // 固定遍历顺序，保证结果确定性
	Dim        int
}

// Build 用编码器对全量用户/商品生成一代索引。
func Build(users []*core.UserProfile, products []*core.Product, encoder *feature.Encoder) *Index {
	idx := &Index{
		Users:      make(map[string]feature.Vector, len(users)),
		Products:   make(map[string]feature.Vector, len(products)),
		ProductIDs: make([]string, 0, len(products)),
		Dim:        encoder.Dim(),
	}
	for _, u := range users {
		if u == nil || u.UserID == "" {
			continue
		}
		idx.Users[u.UserID] = encoder.EncodeUser(u)
	}
	for _, p := range products {
		if p == nil || p.ID == "" {
			continue
		}
		if _, ok := idx.Products[p.ID]; ok {
			continue
		}
		idx.Products[p.ID] = encoder.EncodeProduct(p)
		idx.ProductIDs = append(idx.ProductIDs, p.ID)
	}
	return idx
}

// User 按 id 查用户向量。
func (idx *Index) User(userID string) (feature.Vector, bool) {
	v, ok := idx.Users[userID]
	return v, ok
}

// Product 按 id 查商品向量。
func (idx *Index) Product(productID string) (feature.Vector, bool) {
	v, ok := idx.Products[productID]
	return v, ok
}
