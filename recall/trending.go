package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// TrendingBaseScore 是热门候选的统一基础分。
const TrendingBaseScore = 0.8

// Trending 是热门召回源：按预计算的 trending 分（其次浏览量）排序。
// - 如果配置了 KeyValueStore，优先使用 ZRange（有序集合，离线任务写入的热门榜）
// - 否则从商品目录现算：TrendingScore 降序，其次 Views 降序
// 所有候选拿同一基础分 0.8，来源标签 trending。
// Trending 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Trending struct {
	Store    core.KeyValueStore // 可选：离线热门榜
	Key      string             // 有序集合 key，例如 "trending:products"
	Products core.ProductStore  // 目录兜底

	// TopK 返回的商品数，<=0 时默认 20
	TopK int
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}

	ids := r.fromStore(ctx, topK)
	if len(ids) == 0 {
		var err error
		ids, err = r.fromCatalog(ctx, topK)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = TrendingBaseScore
		it.PutLabel("recall_source", utils.Label{Value: SourceTrending, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// fromStore 从有序集合读取离线热门榜（按分数降序）。
func (r *Trending) fromStore(ctx context.Context, topK int) []string {
	if r.Store == nil || r.Key == "" {
		return nil
	}
	members, err := r.Store.ZRange(ctx, r.Key, 0, int64(topK)-1)
	if err != nil {
		return nil
	}
	return members
}

// fromCatalog 从商品目录现算热门榜。
func (r *Trending) fromCatalog(ctx context.Context, topK int) ([]string, error) {
	if r.Products == nil {
		return nil, nil
	}
	products, err := r.Products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]*core.Product, 0, len(products))
	for _, p := range products {
		if p == nil || !p.Active {
			continue
		}
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Analytics.TrendingScore != b.Analytics.TrendingScore {
			return a.Analytics.TrendingScore > b.Analytics.TrendingScore
		}
		if a.Analytics.Views != b.Analytics.Views {
			return a.Analytics.Views > b.Analytics.Views
		}
		return a.ID < b.ID
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	ids := make([]string, 0, len(ranked))
	for _, p := range ranked {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
