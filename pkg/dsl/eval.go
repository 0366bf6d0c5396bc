package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error

	// prgCache 缓存已编译的表达式，避免每次请求重复编译
	prgCache   = make(map[string]cel.Program)
	prgCacheMu sync.RWMutex
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("user", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// compile 编译表达式并缓存程序。
func compile(expr string) (cel.Program, error) {
	prgCacheMu.RLock()
	prg, ok := prgCache[expr]
	prgCacheMu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	prgCacheMu.Lock()
	prgCache[expr] = prg
	prgCacheMu.Unlock()
	return prg, nil
}

// Eval 是业务规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// 加权/过滤规则以 CEL 表达式配置，例如：
//   - `label.recall_source.contains("trending")` → 候选来自热门召回
//   - `item.score > 0.7 && user.brand_loyalty > 0.5` → 高分候选且品牌忠诚用户
//   - `rctx.scene == "homepage"` → 首页场景
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

// NewEval 创建一个新的 DSL 解释器。
// 同一表达式的编译结果全局缓存，可以在请求间复用。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。
// 空表达式恒为 true。表达式必须返回布尔值。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	prg, err := compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 时 CEL 会报错；规则应使用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	if e.item != nil {
		for k, v := range e.item.Labels {
			labels[k] = map[string]interface{}{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接访问 value
			labelAccessor[k] = v.Value
		}
	}

	item := map[string]interface{}{}
	if e.item != nil {
		item = map[string]interface{}{
			"id":       e.item.ID,
			"score":    e.item.Score,
			"features": e.item.Features,
			"meta":     e.item.Meta,
			"labels":   labels,
		}
	}

	user := map[string]interface{}{}
	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx = map[string]interface{}{
			"user_id": e.rctx.UserID,
			"scene":   e.rctx.Scene,
			"limit":   e.rctx.Limit,
			"params":  e.rctx.Params,
		}
		if p := e.rctx.User; p != nil {
			user = map[string]interface{}{
				"user_id":              p.UserID,
				"price_sensitivity":    p.Scores.PriceSensitivity,
				"brand_loyalty":        p.Scores.BrandLoyalty,
				"quality_focus":        p.Scores.QualityFocus,
				"trend_affinity":       p.Scores.TrendAffinity,
				"discount_affinity":    p.Scores.DiscountAffinity,
				"category_exploration": p.Scores.CategoryExploration,
				"total_purchases":      p.Stats.TotalPurchases,
				"total_spent":          p.Stats.TotalSpent,
			}
		}
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"user":  user,
		"rctx":  rctx,
	}
}
