package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
)

func summerClock() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

// testCatalog 准备一个小而全的目录：偏好类目商品、精选兜底、热门商品
func testCatalog() *catalog.MemoryCatalog {
	c := catalog.NewMemoryCatalog()

	c.PutUser(&core.UserProfile{
		UserID:              "alice",
		PreferredCategories: []string{"shoes"},
		PreferredBrands:     []string{"acme"},
		PreferredPriceRange: core.PriceRange{Min: 50, Max: 200},
	})
	c.PutUser(&core.UserProfile{
		UserID:              "bob",
		PreferredCategories: []string{"shoes"},
	})

	for i := 0; i < 6; i++ {
		c.PutProduct(&core.Product{
			ID:       fmt.Sprintf("shoes-%d", i),
			Category: "shoes",
			Brand:    "acme",
			Price:    100,
			Active:   true,
			Featured: i < 2,
			Analytics: core.ProductAnalytics{
				Views:         int64(100 * (i + 1)),
				TrendingScore: float64(i),
			},
		})
	}
	c.PutProduct(&core.Product{
		ID: "books-1", Category: "books", Price: 20, Active: true, Featured: true,
		Analytics: core.ProductAnalytics{Views: 50},
	})
	return c
}

func newTestEngine(t *testing.T, c *catalog.MemoryCatalog, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithClock(summerClock),
		WithEncoder(&feature.Encoder{Now: summerClock}),
	}
	return New(c, c, append(base, opts...)...)
}

func TestEngine_FallbackBeforeFirstRefresh(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	recs := e.GetRecommendations(context.Background(), "alice")
	if len(recs) == 0 {
		t.Fatal("engine must serve fallback before the first model build")
	}
	for _, r := range recs {
		if len(r.Sources) != 1 || r.Sources[0] != "fallback" {
			t.Errorf("pre-refresh recommendations must come from fallback, got %v", r.Sources)
		}
	}
}

func TestEngine_RecommendAfterRefresh(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	recs := e.GetRecommendations(context.Background(), "alice", WithLimit(5))
	if len(recs) == 0 {
		t.Fatal("expected recommendations for a user with preferences")
	}
	if len(recs) > 5 {
		t.Errorf("limit 5 exceeded: got %d", len(recs))
	}

	seen := map[string]bool{}
	for i, r := range recs {
		if seen[r.ProductID] {
			t.Errorf("duplicate product %s in output", r.ProductID)
		}
		seen[r.ProductID] = true
		if len(r.Sources) == 0 {
			t.Errorf("every recommendation must name its sources, %s has none", r.ProductID)
		}
		if i > 0 && r.Score > recs[i-1].Score {
			t.Errorf("output must be sorted by score desc")
		}
	}
}

func TestEngine_ColdUserStillGetsResults(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// never seen before: no profile, no interactions, still a non-empty answer
	recs := e.GetRecommendations(context.Background(), "stranger")
	if len(recs) == 0 {
		t.Fatal("cold users must still receive recommendations (trending or fallback)")
	}
	for _, r := range recs {
		for _, src := range r.Sources {
			if src == "collaborative" || src == "content" {
				t.Errorf("cold user cannot have personalized sources, got %v", r.Sources)
			}
		}
	}
}

func TestEngine_ExcludesRecentlyViewed(t *testing.T) {
	c := testCatalog()
	e := newTestEngine(t, c)

	e.TrackInteraction(context.Background(), "alice", "shoes-5", core.InteractionView, nil)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	recs := e.GetRecommendations(context.Background(), "alice")
	for _, r := range recs {
		if r.ProductID == "shoes-5" {
			t.Errorf("recently viewed product leaked into recommendations")
		}
	}

	// opt-out keeps it eligible
	recs = e.GetRecommendations(context.Background(), "alice", WithRecentlyViewed())
	found := false
	for _, r := range recs {
		if r.ProductID == "shoes-5" {
			found = true
		}
	}
	if !found {
		t.Errorf("WithRecentlyViewed should keep viewed products eligible")
	}
}

func TestEngine_TrackInteractionIncrementsCounters(t *testing.T) {
	c := testCatalog()
	e := newTestEngine(t, c)

	e.TrackInteraction(context.Background(), "alice", "shoes-0", core.InteractionPurchase, map[string]any{"duration": 30.0})

	p, err := c.GetProduct(context.Background(), "shoes-0")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.Analytics.Purchases != 1 {
		t.Errorf("purchase counter = %d, want 1", p.Analytics.Purchases)
	}
	if got := len(e.Interactions().Events("alice")); got != 1 {
		t.Errorf("interaction store has %d events, want 1", got)
	}
}

func TestEngine_RefreshGenerationAdvances(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	if e.Current() != nil {
		t.Fatal("no model before the first refresh")
	}
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	first := e.Current()
	if first == nil || first.Generation != 1 {
		t.Fatalf("first generation should be 1, got %+v", first)
	}

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	second := e.Current()
	if second.Generation != 2 {
		t.Errorf("second generation should be 2, got %d", second.Generation)
	}
	if first == second {
		t.Errorf("each refresh must produce a new model value")
	}
}

// failingUsers 包装目录并让 ListUsers/GetUser 失败
type failingUsers struct {
	*catalog.MemoryCatalog
	listErr error
	getErr  error
}

func (f *failingUsers) ListUsers(ctx context.Context) ([]*core.UserProfile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryCatalog.ListUsers(ctx)
}

func (f *failingUsers) GetUser(ctx context.Context, userID string) (*core.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryCatalog.GetUser(ctx, userID)
}

func TestEngine_RefreshFailureKeepsPreviousModel(t *testing.T) {
	c := testCatalog()
	users := &failingUsers{MemoryCatalog: c}
	e := New(users, c, WithClock(summerClock), WithEncoder(&feature.Encoder{Now: summerClock}))

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh should succeed: %v", err)
	}
	prev := e.Current()

	users.listErr = errors.New("user service down")
	if err := e.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	if e.Current() != prev {
		t.Errorf("failed refresh must keep the previous generation")
	}
}

func TestEngine_UserLookupFailureFallsBack(t *testing.T) {
	c := testCatalog()
	users := &failingUsers{MemoryCatalog: c}
	e := New(users, c, WithClock(summerClock), WithEncoder(&feature.Encoder{Now: summerClock}))

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	users.getErr = errors.New("user service down")
	recs := e.GetRecommendations(context.Background(), "alice")
	if len(recs) == 0 {
		t.Fatal("lookup failures must degrade to fallback, never to an empty answer")
	}
	for _, r := range recs {
		if len(r.Sources) != 1 || r.Sources[0] != "fallback" {
			t.Errorf("degraded answer should come from fallback, got %v", r.Sources)
		}
	}
}

// panickingProducts 包装目录并让 GetProduct 在链路中途 panic
type panickingProducts struct {
	*catalog.MemoryCatalog
	panicOnGet bool
}

func (p *panickingProducts) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	if p.panicOnGet {
		panic("product service exploded")
	}
	return p.MemoryCatalog.GetProduct(ctx, productID)
}

func TestEngine_PipelinePanicFallsBack(t *testing.T) {
	c := testCatalog()
	products := &panickingProducts{MemoryCatalog: c}
	e := New(c, products, WithClock(summerClock), WithEncoder(&feature.Encoder{Now: summerClock}))

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Boost 节点在加权时逐个读取商品，此时 panic，读路径必须收敛为兜底结果
	products.panicOnGet = true
	recs := e.GetRecommendations(context.Background(), "alice")
	if len(recs) == 0 {
		t.Fatal("a mid-pipeline panic must degrade to a non-empty fallback list")
	}
	for _, r := range recs {
		if len(r.Sources) != 1 || r.Sources[0] != "fallback" {
			t.Errorf("degraded answer should come from fallback, got %v", r.Sources)
		}
	}
}

func TestEngine_TrackAndRecommend(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	recs := e.TrackAndRecommend(context.Background(), "bob", "shoes-1", nil)
	if len(recs) == 0 {
		t.Fatal("TrackAndRecommend must return a fresh recommendation set")
	}
	if got := len(e.Interactions().Events("bob")); got != 1 {
		t.Errorf("the view event should be recorded, got %d events", got)
	}
	for _, r := range recs {
		if r.ProductID == "shoes-1" {
			t.Errorf("the just-viewed product should be excluded from the new set")
		}
	}
}

func TestEngine_EventTriggeredRefresh(t *testing.T) {
	e := newTestEngine(t, testCatalog(), WithRefreshPolicy(3, time.Hour))

	for i := 0; i < 3; i++ {
		e.TrackInteraction(context.Background(), "alice", "shoes-0", core.InteractionView, nil)
	}

	deadline := time.After(2 * time.Second)
	for e.Current() == nil {
		select {
		case <-deadline:
			t.Fatal("event threshold should have triggered a model build")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEngine_ConcurrentTrackRefreshRecommend(t *testing.T) {
	c := testCatalog()
	e := newTestEngine(t, c)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				e.TrackInteraction(ctx, "alice", fmt.Sprintf("shoes-%d", i%6), core.InteractionView, nil)
				e.TrackInteraction(ctx, "bob", "books-1", core.InteractionPurchase, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := e.Refresh(ctx); err != nil {
					t.Errorf("Refresh: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if recs := e.GetRecommendations(ctx, "alice"); len(recs) == 0 {
					t.Errorf("recommendations must never be empty under load")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEngine_BoostPrefersMatchingProducts(t *testing.T) {
	c := testCatalog()
	// a high-trending product outside alice's preferences
	c.PutProduct(&core.Product{
		ID: "books-hot", Category: "books", Price: 500, Active: true,
		Analytics: core.ProductAnalytics{Views: 10000, TrendingScore: 100},
	})
	e := newTestEngine(t, c)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	recs := e.GetRecommendations(context.Background(), "alice", WithLimit(3))
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].ProductID == "books-hot" {
		t.Errorf("business boosts should lift preference matches above raw trending")
	}
}
