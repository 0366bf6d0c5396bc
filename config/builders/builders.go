package builders

import (
	"fmt"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	config.Register("rank.hybrid", BuildHybridNode)
	config.Register("rerank.boost", BuildBoostNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
}

// BuildHybridNode 构建加权混合节点。
// config:
//
//	weights: {collaborative: 0.4, content: 0.4, trending: 0.2}
func BuildHybridNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rank.HybridNode{}
	if raw, ok := cfg["weights"].(map[string]interface{}); ok {
		node.Weights = conv.MapToFloat64(raw)
	}
	return node, nil
}

// BuildBoostNode 构建规则加权节点。属性加权（品类/价格/品牌/当季）
// 依赖商品目录，由宿主注入；配置层仅支持表达式规则。
// config:
//
//	rules:
//	  - expr: 'label.recall_source.contains("trending")'
//	    factor: 1.05
func BuildBoostNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rerank.BoostNode{}
	raw, ok := cfg["rules"].([]interface{})
	if !ok {
		return node, nil
	}
	for i, rc := range raw {
		rm, ok := rc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("rules[%d]: expected map", i)
		}
		expr := conv.ConfigGet(rm, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("rules[%d]: expr required", i)
		}
		factor := conv.ConfigGet(rm, "factor", 1.0)
		node.Rules = append(node.Rules, rerank.Rule{Expr: expr, Factor: factor})
	}
	return node, nil
}

// BuildTopNNode 构建截断节点。config: {n: 10}
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	return &rerank.TopNNode{N: int(n)}, nil
}

// BuildDiversityNode 构建打散节点。config: {label_key: "category"}
func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey: conv.ConfigGet(cfg, "label_key", "category"),
	}, nil
}

// BuildBlacklistNode 构建静态黑名单过滤节点。config: {ids: ["p1", "p2"]}
func BuildBlacklistNode(cfg map[string]interface{}) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if ids == nil {
		ids = []string{}
	}
	return &filter.FilterNode{
		Filters: []filter.Filter{&filter.Blacklist{ProductIDs: ids}},
	}, nil
}
