package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/embedding"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Content 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户的口味向量与商品的属性向量落在同一特征基底上，
// 直接做余弦相似度就是匹配度"
//
// 算法流程：
//  1. 在 Embedding 索引中查目标用户向量，缺失则返回空（冷启动）
//  2. 与索引中每个商品向量做余弦相似度
//  3. 降序取 TopK
//
// 每次请求 O(商品数)；可接受，因为跑在内存索引上而不是全量矩阵上。
type Content struct {
	// Index 返回当前代 Embedding 索引。每次 Recall 只取一次快照。
	Index func() *embedding.Index

	// TopK 返回的商品数，<=0 时默认 20
	TopK int
}

func (r *Content) Name() string {
	return "recall.content"
}

func (r *Content) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	idx := r.Index()
	if idx == nil {
		return nil, nil
	}

	userVec, ok := idx.User(rctx.UserID)
	if !ok {
		return nil, nil // 冷启动：空结果
	}

	type scored struct {
		productID string
		score     float64
	}
	ranked := make([]scored, 0, len(idx.ProductIDs))
	for _, productID := range idx.ProductIDs {
		productVec, ok := idx.Product(productID)
		if !ok {
			continue
		}
		score := feature.Cosine(userVec, productVec)
		if score > 0 {
			ranked = append(ranked, scored{productID: productID, score: score})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].productID < ranked[j].productID
	})

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		it := core.NewItem(s.productID)
		it.Score = s.score
		it.PutLabel("recall_source", utils.Label{Value: SourceContent, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
