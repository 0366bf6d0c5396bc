package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Source 表示一个可复用的召回源（协同过滤/内容相似/热门/兜底/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 召回来源标签值，同时也是 Hybrid 混合权重的 key。
const (
	SourceCollaborative = "collaborative"
	SourceContent       = "content"
	SourceTrending      = "trending"
	SourceFallback      = "fallback"
)
