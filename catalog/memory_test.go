package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestMemoryCatalog_ReadsReturnCopies(t *testing.T) {
	c := NewMemoryCatalog()
	c.PutProduct(&core.Product{
		ID:         "p1",
		Category:   "shoes",
		Attributes: core.ProductAttributes{Seasons: []core.Season{core.SeasonSummer}},
	})

	ctx := context.Background()
	snap, err := c.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := c.IncrCounter(ctx, "p1", core.CounterViews); err != nil {
			t.Fatalf("IncrCounter: %v", err)
		}
	}

	if snap.Analytics.Views != 0 {
		t.Errorf("earlier snapshot mutated: Views = %d, want 0", snap.Analytics.Views)
	}
	fresh, _ := c.GetProduct(ctx, "p1")
	if fresh.Analytics.Views != 5 {
		t.Errorf("fresh read Views = %d, want 5", fresh.Analytics.Views)
	}

	// 调用方改写副本不应污染目录内部记录
	snap.Category = "mutated"
	snap.Attributes.Seasons[0] = core.SeasonWinter
	again, _ := c.GetProduct(ctx, "p1")
	if again.Category != "shoes" {
		t.Errorf("internal record polluted: Category = %q", again.Category)
	}
	if again.Attributes.Seasons[0] != core.SeasonSummer {
		t.Errorf("internal attribute slice polluted: %v", again.Attributes.Seasons)
	}
}

func TestMemoryCatalog_ConcurrentCountersAndReads(t *testing.T) {
	c := NewMemoryCatalog()
	for _, id := range []string{"p1", "p2", "p3"} {
		c.PutProduct(&core.Product{ID: id, Active: true})
	}
	c.PutUser(&core.UserProfile{UserID: "u1"})

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.IncrCounter(ctx, "p1", core.CounterViews)
				c.IncrCounter(ctx, "p2", core.CounterPurchases)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				products, err := c.ListProducts(ctx)
				if err != nil {
					t.Errorf("ListProducts: %v", err)
					return
				}
				// 读路径在副本上工作，与计数器写并发安全
				var total int64
				for _, p := range products {
					total += p.Analytics.Views
				}
				_ = total
				if _, err := c.GetProduct(ctx, "p1"); err != nil {
					t.Errorf("GetProduct: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	p1, _ := c.GetProduct(ctx, "p1")
	if p1.Analytics.Views != 8*200 {
		t.Errorf("p1 Views = %d, want %d", p1.Analytics.Views, 8*200)
	}
	p2, _ := c.GetProduct(ctx, "p2")
	if p2.Analytics.Purchases != 8*200 {
		t.Errorf("p2 Purchases = %d, want %d", p2.Analytics.Purchases, 8*200)
	}
}

func TestMemoryCatalog_UserCopyIsolation(t *testing.T) {
	c := NewMemoryCatalog()
	c.PutUser(&core.UserProfile{
		UserID:              "u1",
		PreferredCategories: []string{"shoes"},
	})

	u, err := c.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	u.PreferredCategories[0] = "mutated"
	u.Scores.BrandLoyalty = 1.0

	again, _ := c.GetUser(context.Background(), "u1")
	if again.PreferredCategories[0] != "shoes" {
		t.Errorf("preferred categories polluted: %v", again.PreferredCategories)
	}
	if again.Scores.BrandLoyalty != 0 {
		t.Errorf("scores polluted: %v", again.Scores.BrandLoyalty)
	}
}
