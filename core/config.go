package core

import "time"

// RecommendDefaults 集中推荐链路的默认参数，供各 Node 与引擎取缺省值。
type RecommendDefaults struct{}

// DefaultLimit 返回默认的推荐条数。
func (RecommendDefaults) DefaultLimit() int { return 10 }

// DefaultCollaborativeWeight 返回协同过滤信号的默认混合权重。
func (RecommendDefaults) DefaultCollaborativeWeight() float64 { return 0.4 }

// DefaultContentWeight 返回内容相似信号的默认混合权重。
func (RecommendDefaults) DefaultContentWeight() float64 { return 0.4 }

// DefaultTrendingWeight 返回热门信号的默认混合权重。
func (RecommendDefaults) DefaultTrendingWeight() float64 { return 0.2 }

// DefaultNeighborCount 返回协同过滤考虑的相似用户数。
func (RecommendDefaults) DefaultNeighborCount() int { return 10 }

// DefaultSimilarityFloor 返回协同过滤的最小相似度阈值。
func (RecommendDefaults) DefaultSimilarityFloor() float64 { return 0.1 }

// DefaultHistoryCap 返回每用户交互历史的保留上限。
func (RecommendDefaults) DefaultHistoryCap() int { return 100 }

// DefaultRefreshEvents 返回触发模型重建的事件数阈值。
func (RecommendDefaults) DefaultRefreshEvents() int { return 200 }

// DefaultRefreshInterval 返回触发模型重建的时间间隔。
func (RecommendDefaults) DefaultRefreshInterval() time.Duration { return 10 * time.Minute }

// DefaultRecallTimeout 返回单路召回的超时时间。
func (RecommendDefaults) DefaultRecallTimeout() time.Duration { return 2 * time.Second }
