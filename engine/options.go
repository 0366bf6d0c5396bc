package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/rerank"
)

// Option 配置引擎。
type Option func(*Engine)

// WithLogger 设置结构化日志。
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEncoder 设置特征编码器（自定义类目词表/文案词表/时钟）。
func WithEncoder(encoder *feature.Encoder) Option {
	return func(e *Engine) {
		if encoder != nil {
			e.encoder = encoder
		}
	}
}

// WithWeights 覆盖混合权重（来源 → 权重）。
func WithWeights(weights map[string]float64) Option {
	return func(e *Engine) { e.weights = weights }
}

// WithTrendingStore 设置离线热门榜的有序集合来源（如 Redis zset）。
func WithTrendingStore(kv core.KeyValueStore, key string) Option {
	return func(e *Engine) {
		e.trendingStore = kv
		e.trendingKey = key
	}
}

// WithBlacklist 设置黑名单过滤（内存列表与/或 Store key）。
func WithBlacklist(productIDs []string, s core.Store, key string) Option {
	return func(e *Engine) {
		e.blacklistIDs = productIDs
		e.blacklistStore = s
		e.blacklistKey = key
	}
}

// WithFeatureService 接入在线特征服务（如 Feast 适配器）。
// 引擎会外包一层 TTL 缓存，并在链路中注入特征注入节点，
// 使 CEL 规则可以引用 item.features 中的在线特征。
func WithFeatureService(fs core.FeatureService) Option {
	return func(e *Engine) {
		if fs != nil {
			e.featureService = feature.NewCachedFeatureService(fs, 10000, 5*time.Minute)
		}
	}
}

// WithBoostRules 追加 CEL 表达式驱动的加权规则。
func WithBoostRules(rules ...rerank.Rule) Option {
	return func(e *Engine) { e.boostRules = append(e.boostRules, rules...) }
}

// WithHistoryCap 设置每用户交互历史保留上限。
func WithHistoryCap(cap int) Option {
	return func(e *Engine) { e.historyCap = cap }
}

// WithRefreshPolicy 设置模型重建触发阈值（事件数 / 时间间隔，先到先触发）。
func WithRefreshPolicy(events int, interval time.Duration) Option {
	return func(e *Engine) {
		e.refreshEvents = events
		e.refreshInterval = interval
	}
}

// WithRecallTimeout 设置单路召回超时时间。
func WithRecallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.recallTimeout = d }
}

// WithClock 注入时钟（测试用；影响交互评分与当季判断）。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// RecommendOption 配置单次推荐请求。
type RecommendOption func(*recommendOptions)

type recommendOptions struct {
	limit                 int
	excludeRecentlyViewed bool
	scene                 string
}

// WithLimit 设置最大返回条数（默认 10）。
func WithLimit(limit int) RecommendOption {
	return func(o *recommendOptions) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

// WithRecentlyViewed 保留近期浏览过的商品（默认排除）。
func WithRecentlyViewed() RecommendOption {
	return func(o *recommendOptions) { o.excludeRecentlyViewed = false }
}

// WithScene 设置请求场景（透传到 RecommendContext，供 CEL 规则使用）。
func WithScene(scene string) RecommendOption {
	return func(o *recommendOptions) { o.scene = scene }
}
