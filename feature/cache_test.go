package feature

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

// countingService 统计穿透次数
type countingService struct {
	mu    sync.Mutex
	calls int
}

func (s *countingService) Name() string { return "counting" }

func (s *countingService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return map[string]float64{"loyalty": 0.5}, nil
}

func (s *countingService) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	out := make(map[string]map[string]float64, len(userIDs))
	for _, id := range userIDs {
		out[id] = map[string]float64{"loyalty": 0.5}
	}
	return out, nil
}

func (s *countingService) GetItemFeatures(ctx context.Context, itemID string) (map[string]float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return map[string]float64{"ctr": 0.1}, nil
}

func (s *countingService) BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	out := make(map[string]map[string]float64, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = map[string]float64{"ctr": 0.1}
	}
	return out, nil
}

func (s *countingService) Close(ctx context.Context) error { return nil }

func (s *countingService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCachedFeatureService_HitsSkipBackend(t *testing.T) {
	backend := &countingService{}
	c := NewCachedFeatureService(backend, 100, time.Minute)
	defer c.Close(context.Background())

	for i := 0; i < 3; i++ {
		if _, err := c.GetUserFeatures(context.Background(), "u1"); err != nil {
			t.Fatalf("GetUserFeatures: %v", err)
		}
	}
	if got := backend.callCount(); got != 1 {
		t.Errorf("backend hit %d times, want 1 (cache should absorb repeats)", got)
	}
}

func TestCachedFeatureService_BatchFetchesOnlyMissing(t *testing.T) {
	backend := &countingService{}
	c := NewCachedFeatureService(backend, 100, time.Minute)
	defer c.Close(context.Background())

	ctx := context.Background()
	if _, err := c.GetItemFeatures(ctx, "p1"); err != nil {
		t.Fatalf("warm up: %v", err)
	}

	got, err := c.BatchGetItemFeatures(ctx, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("BatchGetItemFeatures: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected both items, got %d", len(got))
	}
	// one warm-up call plus one batch call for the missing id
	if backend.callCount() != 2 {
		t.Errorf("backend calls = %d, want 2", backend.callCount())
	}
}

func TestCachedFeatureService_TTLExpiry(t *testing.T) {
	backend := &countingService{}
	c := NewCachedFeatureService(backend, 100, 10*time.Millisecond)
	defer c.Close(context.Background())

	ctx := context.Background()
	c.GetUserFeatures(ctx, "u1")
	time.Sleep(20 * time.Millisecond)
	c.GetUserFeatures(ctx, "u1")

	if got := backend.callCount(); got != 2 {
		t.Errorf("expired entries must re-fetch, backend calls = %d, want 2", got)
	}
}

func TestEnrichNode_InjectsFeatures(t *testing.T) {
	node := &EnrichNode{FeatureService: &countingService{}}
	rctx := &core.RecommendContext{UserID: "u1"}
	items := []*core.Item{{ID: "p1", Score: 0.9}}

	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := out[0].Features["user_loyalty"]; got != 0.5 {
		t.Errorf("user_loyalty = %v, want 0.5", got)
	}
	if got := out[0].Features["item_ctr"]; got != 0.1 {
		t.Errorf("item_ctr = %v, want 0.1", got)
	}
}

func TestEnrichNode_ExistingItemFeatureWins(t *testing.T) {
	node := &EnrichNode{FeatureService: &countingService{}}
	items := []*core.Item{{ID: "p1", Features: map[string]float64{"item_ctr": 0.9}}}

	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := out[0].Features["item_ctr"]; got != 0.9 {
		t.Errorf("item_ctr = %v, want pre-existing 0.9", got)
	}
}
