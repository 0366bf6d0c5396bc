package rerank

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
)

func summerClock() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func boostCatalog() *catalog.MemoryCatalog {
	c := catalog.NewMemoryCatalog()
	c.PutProduct(&core.Product{
		ID:       "all-match",
		Category: "shoes",
		Brand:    "acme",
		Price:    100,
		Attributes: core.ProductAttributes{
			Seasons: []core.Season{core.SeasonSummer},
		},
		Active: true,
	})
	c.PutProduct(&core.Product{
		ID:       "no-match",
		Category: "books",
		Brand:    "other",
		Price:    9999,
		Active:   true,
	})
	return c
}

func boostUser() *core.UserProfile {
	return &core.UserProfile{
		UserID:              "u1",
		PreferredCategories: []string{"shoes"},
		PreferredBrands:     []string{"acme"},
		PreferredPriceRange: core.PriceRange{Min: 50, Max: 150},
	}
}

func TestBoostNode_AllRulesMultiply(t *testing.T) {
	item := core.NewItem("all-match")
	item.Score = 1.0

	n := &BoostNode{Products: boostCatalog(), Now: summerClock}
	rctx := &core.RecommendContext{UserID: "u1", User: boostUser()}

	out, err := n.Process(context.Background(), rctx, []*core.Item{item})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// 1.3 * 1.2 * 1.4 * 1.1
	want := BoostCategory * BoostPrice * BoostBrand * BoostSeason
	if math.Abs(out[0].Score-want) > 1e-9 {
		t.Errorf("all-match boost = %v, want %v", out[0].Score, want)
	}
	if _, ok := out[0].GetLabel("boost"); !ok {
		t.Errorf("boosted candidates should carry a boost label")
	}
}

func TestBoostNode_NoMatchKeepsScore(t *testing.T) {
	item := core.NewItem("no-match")
	item.Score = 0.6

	n := &BoostNode{Products: boostCatalog(), Now: summerClock}
	rctx := &core.RecommendContext{UserID: "u1", User: boostUser()}

	out, _ := n.Process(context.Background(), rctx, []*core.Item{item})
	if out[0].Score != 0.6 {
		t.Errorf("unmatched candidate must keep its score, got %v", out[0].Score)
	}
	if _, ok := out[0].GetLabel("boost"); ok {
		t.Errorf("unmatched candidate should not carry a boost label")
	}
}

func TestBoostNode_SingleRules(t *testing.T) {
	tests := []struct {
		name string
		user *core.UserProfile
		want float64
	}{
		{
			name: "category_only",
			user: &core.UserProfile{UserID: "u1", PreferredCategories: []string{"shoes"}},
			want: BoostCategory * BoostSeason, // season matches the June clock too
		},
		{
			name: "brand_only",
			user: &core.UserProfile{UserID: "u1", PreferredBrands: []string{"acme"}},
			want: BoostBrand * BoostSeason,
		},
		{
			name: "price_only",
			user: &core.UserProfile{UserID: "u1", PreferredPriceRange: core.PriceRange{Min: 50, Max: 150}},
			want: BoostPrice * BoostSeason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := core.NewItem("all-match")
			item.Score = 1.0

			n := &BoostNode{Products: boostCatalog(), Now: summerClock}
			out, _ := n.Process(context.Background(), &core.RecommendContext{UserID: "u1", User: tt.user}, []*core.Item{item})
			if math.Abs(out[0].Score-tt.want) > 1e-9 {
				t.Errorf("boost = %v, want %v", out[0].Score, tt.want)
			}
		})
	}
}

func TestBoostNode_ReordersAfterBoost(t *testing.T) {
	preferred := core.NewItem("all-match")
	preferred.Score = 0.5
	leader := core.NewItem("no-match")
	leader.Score = 0.6

	n := &BoostNode{Products: boostCatalog(), Now: summerClock}
	rctx := &core.RecommendContext{UserID: "u1", User: boostUser()}

	out, _ := n.Process(context.Background(), rctx, []*core.Item{leader, preferred})
	if out[0].ID != "all-match" {
		t.Errorf("boost should lift the preferred product above the raw leader, got %s", out[0].ID)
	}
}

func TestBoostNode_CELRules(t *testing.T) {
	item := core.NewItem("no-match")
	item.Score = 1.0

	n := &BoostNode{
		Products: boostCatalog(),
		Now:      summerClock,
		Rules: []Rule{
			{Expr: `rctx.scene == "homepage"`, Factor: 2.0},
			{Expr: `rctx.scene == "cart"`, Factor: 3.0},
			{Expr: `this is not valid CEL (`, Factor: 10.0}, // broken rules are skipped
		},
	}
	rctx := &core.RecommendContext{UserID: "u1", Scene: "homepage"}

	out, _ := n.Process(context.Background(), rctx, []*core.Item{item})
	if math.Abs(out[0].Score-2.0) > 1e-9 {
		t.Errorf("only the matching CEL rule applies, got %v", out[0].Score)
	}
}

func TestBoostNode_NilUserPassthrough(t *testing.T) {
	item := core.NewItem("all-match")
	item.Score = 0.7

	n := &BoostNode{Products: boostCatalog(), Now: summerClock}
	out, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{item})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out[0].Score != 0.7 {
		t.Errorf("without a profile no attribute boost applies, got %v", out[0].Score)
	}
}
