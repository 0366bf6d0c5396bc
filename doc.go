// Package shoprec 是嵌入零售平台的混合个性化推荐引擎（Hybrid Personalization Engine）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - Generation-first: 交互矩阵与 Embedding 索引按"代"整体重建、原子切换，读路径无锁
//
// 三路信号混合：协同过滤（相似用户）、内容相似（用户口味向量 vs 商品属性向量）、
// 热门兜底（trending / fallback），再叠加确定性的业务规则加权（类目/价格/品牌/季节）。
package shoprec

import "github.com/rushteam/shoprec/pipeline"

// 轻量 facade：便于直接 import "shoprec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
