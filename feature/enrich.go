package feature

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// EnrichNode 是特征注入节点，从 FeatureService 拉取用户与候选商品的
// 在线特征并写入 item.Features，供下游规则（CEL 表达式中的 item.features）
// 与外部排序服务消费。
//
// 特征获取失败不阻断推荐主链路：用户特征缺失时只注入商品特征，
// 批量商品特征失败时原样返回候选。
type EnrichNode struct {
	// FeatureService 特征服务，通常为 Feast 适配器外包一层 TTL 缓存
	FeatureService core.FeatureService

	// UserPrefix 用户特征 key 前缀，默认 "user_"
	UserPrefix string

	// ItemPrefix 商品特征 key 前缀，默认 "item_"
	ItemPrefix string
}

func (n *EnrichNode) Name() string {
	return "feature.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *EnrichNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.FeatureService == nil {
		return items, nil
	}

	userPrefix := n.UserPrefix
	if userPrefix == "" {
		userPrefix = "user_"
	}
	itemPrefix := n.ItemPrefix
	if itemPrefix == "" {
		itemPrefix = "item_"
	}

	var userFeatures map[string]float64
	if rctx != nil && rctx.UserID != "" {
		userFeatures, _ = n.FeatureService.GetUserFeatures(ctx, rctx.UserID)
	}

	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item != nil {
			itemIDs = append(itemIDs, item.ID)
		}
	}
	itemFeatures, _ := n.FeatureService.BatchGetItemFeatures(ctx, itemIDs)

	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Features == nil {
			item.Features = make(map[string]float64)
		}
		for k, v := range userFeatures {
			item.Features[userPrefix+k] = v
		}
		for k, v := range itemFeatures[item.ID] {
			if _, exists := item.Features[itemPrefix+k]; !exists {
				item.Features[itemPrefix+k] = v
			}
		}
	}

	return items, nil
}
