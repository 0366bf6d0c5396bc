package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选商品的分数、特征、元信息与标签。
// Labels 用于解释与策略驱动（例如 recall_source 记录候选来自哪几路召回）；
// Score 用于排序决策。Item 仅在单次请求内存活，从不持久化。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}

// HasSource 检查候选是否来自某一路召回（recall_source label 以 '|' 累积多个来源）。
func (it *Item) HasSource(source string) bool {
	lbl, ok := it.GetLabel("recall_source")
	if !ok {
		return false
	}
	return utils.LabelContains(lbl, source)
}
