// Package rank 提供排序阶段的 Node：把多路召回候选聚合成单一分数。
package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
	"github.com/rushteam/shoprec/recall"
)

// HybridNode 按来源权重混合多路召回的候选。
//
// 算法：
//  1. 每条候选的分数乘以其召回来源的权重
//  2. 按商品 ID 聚合：贡献求和，recall_source 标签求并
//  3. 按聚合分降序排序；同分按商品 ID 升序稳定打破，保证可复现实验
//
// 默认权重：协同 0.4、内容 0.4、热门 0.2——稳态下行为信号与属性信号
// 主导排序，热度只作为稀疏数据时的稳定器。
type HybridNode struct {
	// Weights 召回来源 → 混合权重；为空时使用 DefaultWeights()
	Weights map[string]float64
}

// DefaultWeights 返回默认的来源权重。
func DefaultWeights() map[string]float64 {
	d := core.RecommendDefaults{}
	return map[string]float64{
		recall.SourceCollaborative: d.DefaultCollaborativeWeight(),
		recall.SourceContent:       d.DefaultContentWeight(),
		recall.SourceTrending:      d.DefaultTrendingWeight(),
	}
}

func (n *HybridNode) Name() string {
	return "rank.hybrid"
}

func (n *HybridNode) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *HybridNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	weights := n.Weights
	if len(weights) == 0 {
		weights = DefaultWeights()
	}

	merged := make(map[string]*core.Item, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		source := ""
		if lbl, ok := it.GetLabel("recall_source"); ok {
			source = lbl.Value
		}
		weight, ok := weights[source]
		if !ok {
			// 未配置权重的来源（如 fallback 直通）不参与加权，原分保留
			weight = 1
		}
		contribution := it.Score * weight

		agg, exists := merged[it.ID]
		if !exists {
			agg = core.NewItem(it.ID)
			agg.Meta = it.Meta
			merged[it.ID] = agg
		}
		agg.Score += contribution
		for k, v := range it.Labels {
			if k == "recall_priority" {
				continue
			}
			agg.PutLabel(k, v)
		}
		agg.PutLabel("hybrid_weight", utils.Label{
			Value:  fmt.Sprintf("%s:%.2f", source, weight),
			Source: "rank",
		})
	}

	out := make([]*core.Item, 0, len(merged))
	for _, it := range merged {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
