package interaction

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/conv"
)

// Tracker 是写路径：记录交互事件、递增商品计数器、评估是否该触发模型重建。
//
// 追踪是 best-effort 的：商品计数器递增失败只记日志不返回错误，
// 绝不能阻塞调用方的主动作（例如完成一次加购）。
type Tracker struct {
	Store    *Store
	Products core.ProductStore
	Logger   zerolog.Logger

	// RefreshEvents / RefreshInterval 是重建触发阈值：
	// 自上次重建起累计事件数达到 RefreshEvents，或距上次重建超过
	// RefreshInterval，二者先到先触发。
	RefreshEvents   int
	RefreshInterval time.Duration

	// OnRefreshDue 在重建到期时被调用（引擎注入；内部用 singleflight
	// 串行化，重复触发只是 no-op 合并）。
	OnRefreshDue func()

	// Now 注入时钟（事件时间戳与重建计时），为空时使用 time.Now。
	Now func() time.Time

	mu          sync.Mutex
	eventCount  int
	lastRefresh time.Time
}

// NewTracker 创建交互追踪器。
func NewTracker(store *Store, products core.ProductStore, logger zerolog.Logger) *Tracker {
	d := core.RecommendDefaults{}
	return &Tracker{
		Store:           store,
		Products:        products,
		Logger:          logger,
		RefreshEvents:   d.DefaultRefreshEvents(),
		RefreshInterval: d.DefaultRefreshInterval(),
		Now:             time.Now,
	}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Track 记录一次交互。metadata 支持 "duration"（停留秒数）与 "timestamp"。
// 未知商品等追踪失败只记日志：追踪永远不阻塞主流程。
func (t *Tracker) Track(ctx context.Context, userID, productID string, kind core.InteractionKind, metadata map[string]any) {
	if userID == "" || productID == "" || !kind.Valid() {
		t.Logger.Warn().
			Str("user_id", userID).
			Str("product_id", productID).
			Str("kind", string(kind)).
			Msg("drop invalid interaction")
		return
	}

	ev := core.Interaction{
		UserID:    userID,
		ProductID: productID,
		Kind:      kind,
		Timestamp: t.now(),
	}
	if metadata != nil {
		if secs, ok := conv.ToFloat64(metadata["duration"]); ok && secs > 0 {
			ev.Duration = time.Duration(secs * float64(time.Second))
		}
		if ts, ok := metadata["timestamp"].(time.Time); ok && !ts.IsZero() {
			ev.Timestamp = ts
		}
	}

	t.Store.Append(ev)

	// 商品计数器递增是外部副作用，best-effort
	if t.Products != nil {
		if err := t.Products.IncrCounter(ctx, productID, core.CounterKindFor(kind)); err != nil {
			t.Logger.Warn().Err(err).
				Str("product_id", productID).
				Str("kind", string(kind)).
				Msg("increment product counter failed")
		}
	}

	if t.refreshDue() {
		if fn := t.OnRefreshDue; fn != nil {
			go fn()
		}
	}
}

// refreshDue 评估重建是否到期，并在到期时重置计数。
func (t *Tracker) refreshDue() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 首个事件建立计时基线，之后由 MarkRefreshed 推进
	if t.lastRefresh.IsZero() {
		t.lastRefresh = t.now()
	}

	t.eventCount++
	byCount := t.RefreshEvents > 0 && t.eventCount >= t.RefreshEvents
	byTime := t.RefreshInterval > 0 && t.now().Sub(t.lastRefresh) >= t.RefreshInterval
	if !byCount && !byTime {
		return false
	}
	t.eventCount = 0
	t.lastRefresh = t.now()
	return true
}

// MarkRefreshed 通知 Tracker 一次重建已完成（定时重建也会推进计时）。
func (t *Tracker) MarkRefreshed() {
	t.mu.Lock()
	t.eventCount = 0
	t.lastRefresh = t.now()
	t.mu.Unlock()
}
