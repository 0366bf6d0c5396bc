package engine

import (
	"time"

	"github.com/rushteam/shoprec/embedding"
	"github.com/rushteam/shoprec/interaction"
)

// Model 是一代完整的推荐模型：交互矩阵 + 用户/商品 Embedding 索引。
//
// 一代模型构建完成后只读；引擎以原子指针持有当前代，
// 读请求无锁取用，换代是单次指针替换——在途请求要么看到
// 完整的旧代，要么看到完整的新代，从不出现"旧矩阵配新索引"。
type Model struct {
	Matrix     *interaction.Matrix
	Index      *embedding.Index
	Generation int64
	BuiltAt    time.Time
}
