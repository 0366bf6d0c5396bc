package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// ViewHistory 是近期浏览历史的读接口（interaction.Store 实现）。
type ViewHistory interface {
	// RecentProductIDs 返回用户最近交互过的商品 ID（去重，从新到旧）
	RecentProductIDs(userID string, limit int, kinds ...core.InteractionKind) []string
}

// RecentlyViewed 过滤掉用户近期浏览过的商品。
// 默认开启；请求可以通过 RecommendContext.ExcludeRecentlyViewed=false 关闭。
type RecentlyViewed struct {
	History ViewHistory

	// Limit 参与过滤的近期浏览条数，<=0 时默认 50
	Limit int
}

func (f *RecentlyViewed) Name() string {
	return "filter.recently_viewed"
}

func (f *RecentlyViewed) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.History == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	if !rctx.ExcludeRecentlyViewed {
		return false, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	for _, id := range f.History.RecentProductIDs(rctx.UserID, limit, core.InteractionView) {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
