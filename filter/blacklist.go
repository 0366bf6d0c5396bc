package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/shoprec/core"
)

// Blacklist 是黑名单过滤器，过滤掉下架/禁售等不可推荐的商品。
// 支持内存 ID 列表与 Store key 两种数据源（后者由运营离线写入）。
type Blacklist struct {
	// ProductIDs 是内存中的黑名单商品 ID 列表
	ProductIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选），value 为 JSON 数组
	Key string
}

func (f *Blacklist) Name() string {
	return "filter.blacklist"
}

func (f *Blacklist) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.ProductIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		data, err := f.Store.Get(ctx, f.Key)
		if err != nil {
			return false, nil // 黑名单读取失败时放行，不中断链路
		}
		var ids []string
		if json.Unmarshal(data, &ids) == nil {
			for _, id := range ids {
				if item.ID == id {
					return true, nil
				}
			}
		}
	}

	return false, nil
}
