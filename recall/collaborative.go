package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/interaction"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Collaborative 是基于用户的协同过滤召回源（User-based CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的商品"
//
// 算法流程：
//  1. 在交互矩阵中定位目标用户的行
//  2. 与其余每一行做余弦相似度（任一行零范数时相似度定义为 0）
//  3. 保留相似度 > SimilarityFloor 的用户，按相似度降序取 TopK 邻居
//  4. 对每个邻居：目标用户未触达（cell==0）且邻居触达（cell>0）的商品，
//     累加 邻居cell × 邻居相似度（跨邻居求和，不取 max）
//  5. 按累计分降序返回，截断到 TopK
//
// 冷启动：用户不在矩阵中返回空列表——这是定义良好的空结果，
// 不是错误，Hybrid 混排必须容忍。
type Collaborative struct {
	// Matrix 返回当前代交互矩阵。每次 Recall 只取一次快照，
	// 整个计算过程落在同一代上。
	Matrix func() *interaction.Matrix

	// Neighbors 考虑的相似用户数，<=0 时默认 10
	Neighbors int

	// SimilarityFloor 最小相似度阈值，<=0 时默认 0.1
	SimilarityFloor float64

	// TopK 最终返回的商品数，<=0 时默认 20
	TopK int
}

func (r *Collaborative) Name() string {
	return "recall.collaborative"
}

func (r *Collaborative) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Matrix == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	m := r.Matrix()
	if m == nil {
		return nil, nil
	}

	target, ok := m.Row(rctx.UserID)
	if !ok {
		return nil, nil // 冷启动：空结果
	}

	neighbors := r.Neighbors
	if neighbors <= 0 {
		neighbors = core.RecommendDefaults{}.DefaultNeighborCount()
	}
	floor := r.SimilarityFloor
	if floor <= 0 {
		floor = core.RecommendDefaults{}.DefaultSimilarityFloor()
	}

	type neighbor struct {
		row int
		sim float64
	}
	sims := make([]neighbor, 0, len(m.UserIDs))
	for i, userID := range m.UserIDs {
		if userID == rctx.UserID {
			continue
		}
		sim := rowCosine(target, m.Cells[i])
		if sim > floor {
			sims = append(sims, neighbor{row: i, sim: sim})
		}
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].sim != sims[j].sim {
			return sims[i].sim > sims[j].sim
		}
		return m.UserIDs[sims[i].row] < m.UserIDs[sims[j].row]
	})
	if len(sims) > neighbors {
		sims = sims[:neighbors]
	}

	// score[product] = Σ 邻居cell × 邻居相似度
	scores := make(map[int]float64)
	for _, nb := range sims {
		row := m.Cells[nb.row]
		for j, cell := range row {
			if cell <= 0 || target[j] != 0 {
				continue
			}
			scores[j] += cell * nb.sim
		}
	}

	type scored struct {
		productID string
		score     float64
	}
	ranked := make([]scored, 0, len(scores))
	for j, score := range scores {
		ranked = append(ranked, scored{productID: m.ProductIDs[j], score: score})
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
		it.PutLabel("recall_source", utils.Label{Value: SourceCollaborative, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// rowCosine 计算两行的余弦相似度；任一行零范数时为 0，从不除零。
func rowCosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
