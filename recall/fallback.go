package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// FallbackBaseScore 是兜底候选的统一基础分。
const FallbackBaseScore = 0.5

// Fallback 是兜底召回源：精选（featured）且在售（active）的商品按浏览量排序。
// 只在完整链路失败或产出为空时使用（如内部错误、冷启动无任何信号），
// 从不出现在正常成功输出里。
type Fallback struct {
	Products core.ProductStore

	// TopK 返回的商品数，<=0 时默认 20
	TopK int
}

func (r *Fallback) Name() string {
	return "recall.fallback"
}

func (r *Fallback) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Products == nil {
		return nil, nil
	}
	products, err := r.Products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]*core.Product, 0, len(products))
	for _, p := range products {
		if p == nil || !p.Active || !p.Featured {
			continue
		}
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Analytics.Views != ranked[j].Analytics.Views {
			return ranked[i].Analytics.Views > ranked[j].Analytics.Views
		}
		return ranked[i].ID < ranked[j].ID
	})

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]*core.Item, 0, len(ranked))
	for _, p := range ranked {
		it := core.NewItem(p.ID)
		it.Score = FallbackBaseScore
		it.PutLabel("recall_source", utils.Label{Value: SourceFallback, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
