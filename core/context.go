package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载用户/场景/请求级信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// User 是强类型用户画像。
	User *UserProfile

	// Limit 是请求的最大返回条数（<=0 时由 TopN 节点按默认值截断）。
	Limit int

	// ExcludeRecentlyViewed 控制是否过滤用户近期浏览过的商品（默认开启）。
	ExcludeRecentlyViewed bool

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：新用户、冷启动、价格敏感等
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 time_of_day、device_type、query 等）。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
