package rerank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/dsl"
	"github.com/rushteam/shoprec/pkg/utils"
)

// 四条内置零售加权规则的系数。各规则独立且相乘，
// 四条全中的候选最高可达 ×1.3×1.2×1.4×1.1 ≈ ×2.4；一条不中保持 ×1。
const (
	BoostCategory = 1.3 // 商品类目在用户偏好类目中
	BoostPrice    = 1.2 // 价格落在用户偏好区间
	BoostBrand    = 1.4 // 品牌在用户偏好品牌中
	BoostSeason   = 1.1 // 商品季节包含当前日历季节
)

// Rule 是一条 CEL 表达式驱动的附加加权规则（运营配置）。
type Rule struct {
	Expr   string  // CEL 表达式，参见 pkg/dsl
	Factor float64 // 命中时乘以的系数
}

// BoostNode 在混合排序之后、截断之前应用个性化业务加权。
//
// 每条候选从 boost=1 开始，依次独立相乘命中的规则系数，
// 然后按加权后的分数重新排序。加权不改变候选集合，只改变顺序。
type BoostNode struct {
	// Products 商品目录，用于读取候选的价格/类目/品牌/季节
	Products core.ProductStore

	// Rules 附加的 CEL 规则（可选）
	Rules []Rule

	// Now 注入时钟（当季判断），为空时使用 time.Now
	Now func() time.Time
}

func (n *BoostNode) Name() string {
	return "rerank.boost"
}

func (n *BoostNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *BoostNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}
	season := core.SeasonOf(now)

	var user *core.UserProfile
	if rctx != nil {
		user = rctx.User
	}

	for _, it := range items {
		if it == nil {
			continue
		}

		boost := 1.0
		if user != nil && n.Products != nil {
			if p, err := n.Products.GetProduct(ctx, it.ID); err == nil && p != nil {
				if user.PrefersCategory(p.Category) {
					boost *= BoostCategory
				}
				if user.InPriceRange(p.Price) {
					boost *= BoostPrice
				}
				if user.PrefersBrand(p.Brand) {
					boost *= BoostBrand
				}
				if p.InSeason(season) {
					boost *= BoostSeason
				}
			}
		}

		for _, rule := range n.Rules {
			if rule.Factor <= 0 || rule.Expr == "" {
				continue
			}
			ok, err := dsl.NewEval(it, rctx).Evaluate(rule.Expr)
			if err != nil {
				continue // 规则表达式错误时跳过该规则，不中断链路
			}
			if ok {
				boost *= rule.Factor
			}
		}

		if boost != 1.0 {
			it.Score *= boost
			it.PutLabel("boost", utils.Label{
				Value:  fmt.Sprintf("%.3f", boost),
				Source: "rerank",
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}
