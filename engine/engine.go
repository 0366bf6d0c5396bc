// Package engine 是混合个性化推荐引擎的对外入口：
// 读路径 GetRecommendations、写路径 TrackInteraction、模型代的构建与原子切换。
package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/embedding"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/interaction"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// Recommendation 是返回给调用方的单条推荐：商品、混合分与贡献来源。
type Recommendation struct {
	ProductID string
	Score     float64
	Sources   []string
}

// Engine 持有一套长生命周期的内存模型（矩阵 + Embedding 索引），
// 服务大量并发的推荐读请求与交互写请求。
//
// 并发模型：
//   - 读请求之间互不阻塞：当前代模型经 atomic.Pointer 无锁取用
//   - 交互写是每用户独立的追加写，跨用户无需协调
//   - 模型重建是排他操作：singleflight 串行化，重建中到达的
//     重建请求合并为 no-op，不会出现重复的并发重建
//   - 换代是单次原子指针替换，失败的重建保留上一代（无局部写）
type Engine struct {
	users    core.UserStore
	products core.ProductStore

	interactions *interaction.Store
	tracker      *interaction.Tracker
	encoder      *feature.Encoder
	logger       zerolog.Logger

	trendingStore core.KeyValueStore
	trendingKey   string

	blacklistIDs   []string
	blacklistStore core.Store
	blacklistKey   string

	weights        map[string]float64
	boostRules     []rerank.Rule
	featureService core.FeatureService

	historyCap      int
	refreshEvents   int
	refreshInterval time.Duration
	recallTimeout   time.Duration
	now             func() time.Time

	model      atomic.Pointer[Model]
	generation atomic.Int64
	sf         singleflight.Group
}

// New 构建推荐引擎。users/products 是外部用户/商品服务的只读适配。
// 首次 Refresh 之前引擎处于 ModelNotReady 状态，推荐请求降级到 fallback。
func New(users core.UserStore, products core.ProductStore, opts ...Option) *Engine {
	d := core.RecommendDefaults{}
	e := &Engine{
		users:           users,
		products:        products,
		encoder:         feature.NewEncoder(),
		logger:          zerolog.Nop(),
		historyCap:      d.DefaultHistoryCap(),
		refreshEvents:   d.DefaultRefreshEvents(),
		refreshInterval: d.DefaultRefreshInterval(),
		recallTimeout:   d.DefaultRecallTimeout(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.interactions = interaction.NewStore(e.historyCap)
	e.tracker = interaction.NewTracker(e.interactions, products, e.logger)
	e.tracker.Now = e.now
	e.tracker.RefreshEvents = e.refreshEvents
	e.tracker.RefreshInterval = e.refreshInterval
	e.tracker.OnRefreshDue = func() {
		if err := e.Refresh(context.Background()); err != nil {
			e.logger.Warn().Err(err).Msg("event-triggered refresh failed")
		}
	}
	return e
}

// Interactions 暴露交互事件存储（只读用途，如同步历史数据）。
func (e *Engine) Interactions() *interaction.Store { return e.interactions }

// Current 返回当前代模型；首次构建完成前为 nil。
func (e *Engine) Current() *Model { return e.model.Load() }

// Refresh 全量重建一代模型并原子切换。
// 同一时刻至多一次重建在途：重建中到达的调用合并到在途结果。
// 重建失败保留上一代，下个触发周期自然重试。
func (e *Engine) Refresh(ctx context.Context) error {
	_, err, _ := e.sf.Do("refresh", func() (interface{}, error) {
		start := e.now()

		// 对用户/商品/交互各取一次一致快照，整代模型建立在同一份输入上
		users, err := e.users.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		products, err := e.products.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		events := e.interactions.Snapshot()

		matrix := interaction.BuildMatrix(users, products, events, e.now())
		index := embedding.Build(users, products, e.encoder)

		m := &Model{
			Matrix:     matrix,
			Index:      index,
			Generation: e.generation.Add(1),
			BuiltAt:    e.now(),
		}
		e.model.Store(m)
		e.tracker.MarkRefreshed()

		e.logger.Info().
			Int64("generation", m.Generation).
			Int("users", len(matrix.UserIDs)).
			Int("products", len(matrix.ProductIDs)).
			Dur("took", e.now().Sub(start)).
			Msg("model refreshed")
		return nil, nil
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("model refresh failed, keeping previous generation")
	}
	return err
}

// RunRefreshLoop 按固定间隔重建模型，直到 ctx 结束。通常在服务启动时
// go e.RunRefreshLoop(ctx, interval) 拉起。
func (e *Engine) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = e.refreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Refresh(ctx); err != nil {
				e.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// GetRecommendations 返回用户的个性化推荐列表。
//
// 失败策略：链路中任何错误或 panic 都在此处收敛为 fallback 输出，
// 推荐读路径永远不向调用方上抛错误。
func (e *Engine) GetRecommendations(ctx context.Context, userID string, opts ...RecommendOption) []Recommendation {
	o := &recommendOptions{
		limit:                 core.RecommendDefaults{}.DefaultLimit(),
		excludeRecentlyViewed: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	recs := e.recommend(ctx, userID, o)
	if len(recs) == 0 {
		return e.fallback(ctx, o.limit)
	}
	return recs
}

// recommend 执行完整混合链路；任何异常返回 nil，由调用方降级。
func (e *Engine) recommend(ctx context.Context, userID string, o *recommendOptions) (recs []Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Str("user_id", userID).
				Msg("recommendation pipeline panicked, serving fallback")
			recs = nil
		}
	}()

	model := e.Current()
	if model == nil {
		e.logger.Debug().Str("user_id", userID).Msg("model not ready, serving fallback")
		return nil
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil && !core.IsNotFound(err) {
		// 外部用户服务瞬时失败：记录并降级，不上抛
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("user lookup failed, serving fallback")
		return nil
	}

	rctx := &core.RecommendContext{
		UserID:                userID,
		Scene:                 o.scene,
		User:                  user,
		Limit:                 o.limit,
		ExcludeRecentlyViewed: o.excludeRecentlyViewed,
	}

	items, err := e.buildPipeline(model, o.limit).Run(ctx, rctx, nil)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("pipeline failed, serving fallback")
		return nil
	}
	return toRecommendations(items)
}

// buildPipeline 针对一代模型组装链路：
// 三路召回 fan-out → 过滤 → 权重混合 → 业务加权 → TopN 截断。
func (e *Engine) buildPipeline(model *Model, limit int) *pipeline.Pipeline {
	matrix := model.Matrix
	index := model.Index

	// 召回宽度放大到 limit 的 3 倍，给过滤和混排留余量
	recallK := limit * 3

	sources := []recall.Source{
		&recall.Collaborative{
			Matrix: func() *interaction.Matrix { return matrix },
			TopK:   recallK,
		},
		&recall.Content{
			Index: func() *embedding.Index { return index },
			TopK:  recallK,
		},
		&recall.Trending{
			Store:    e.trendingStore,
			Key:      e.trendingKey,
			Products: e.products,
			TopK:     recallK,
		},
	}

	filters := []filter.Filter{
		&filter.RecentlyViewed{History: e.interactions},
	}
	if len(e.blacklistIDs) > 0 || e.blacklistStore != nil {
		filters = append(filters, &filter.Blacklist{
			ProductIDs: e.blacklistIDs,
			Store:      e.blacklistStore,
			Key:        e.blacklistKey,
		})
	}

	nodes := []pipeline.Node{
		&recall.Fanout{
			Sources: sources,
			Timeout: e.recallTimeout,
		},
		&filter.FilterNode{Filters: filters},
	}
	if e.featureService != nil {
		nodes = append(nodes, &feature.EnrichNode{FeatureService: e.featureService})
	}
	nodes = append(nodes,
		&rank.HybridNode{Weights: e.weights},
		&rerank.BoostNode{
			Products: e.products,
			Rules:    e.boostRules,
			Now:      e.now,
		},
		&rerank.TopNNode{N: limit},
	)

	return &pipeline.Pipeline{Nodes: nodes}
}

// fallback 执行兜底召回；兜底自身失败时返回空列表（极端情况）。
func (e *Engine) fallback(ctx context.Context, limit int) []Recommendation {
	src := &recall.Fallback{Products: e.products, TopK: limit}
	items, err := src.Recall(ctx, nil)
	if err != nil {
		e.logger.Error().Err(err).Msg("fallback recall failed")
		return nil
	}
	return toRecommendations(items)
}

// TrackInteraction 记录一次交互事件。追踪是 best-effort 的：
// 失败只记日志，绝不阻塞调用方的主动作。
func (e *Engine) TrackInteraction(ctx context.Context, userID, productID string, kind core.InteractionKind, metadata map[string]any) {
	e.tracker.Track(ctx, userID, productID, kind, metadata)
}

// TrackAndRecommend 记录一次浏览事件并同步重算该用户的推荐集，
// 供实时层推送到用户的活跃会话（调用方拥有推送，本引擎只产出结果）。
func (e *Engine) TrackAndRecommend(ctx context.Context, userID, productID string, metadata map[string]any, opts ...RecommendOption) []Recommendation {
	e.tracker.Track(ctx, userID, productID, core.InteractionView, metadata)
	return e.GetRecommendations(ctx, userID, opts...)
}

// Close 释放引擎持有的外部资源（特征服务连接等）。
func (e *Engine) Close(ctx context.Context) error {
	if e.featureService != nil {
		return e.featureService.Close(ctx)
	}
	return nil
}

// toRecommendations 把链路输出转换为对外结果结构。
func toRecommendations(items []*core.Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, Recommendation{
			ProductID: it.ID,
			Score:     it.Score,
			Sources:   itemSources(it),
		})
	}
	return out
}

// itemSources 解析累积后的 recall_source 标签（'|' 分隔，去重保序）。
func itemSources(it *core.Item) []string {
	lbl, ok := it.GetLabel("recall_source")
	if !ok || lbl.Value == "" {
		return nil
	}
	parts := strings.Split(lbl.Value, "|")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
