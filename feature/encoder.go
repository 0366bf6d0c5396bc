package feature

import (
	"strings"
	"time"

	"github.com/rushteam/shoprec/core"
)

// 共享特征基底的槽位布局。用户向量与商品向量各自独立生成，
// 但投影到同一基底，所以二者可以直接做余弦比较（Content 召回）。
// 记录缺失的属性一律编码为 0，从不出现 missing 维度。
const (
	slotPriceTier    = 0                  // 价格档位：price/1000；用户侧为偏好区间中点
	slotPopularity   = 1                  // 热度：views/10000；用户侧为潮流偏好
	slotRating       = 2                  // 评分：rating/5；用户侧为品质导向
	slotSeasonBase   = 3                  // 4 个季节指示位（spring/summer/fall/winter）
	slotVariety      = slotSeasonBase + 4 // 款式丰富度：颜色/尺码/材质数量；用户侧为类目探索倾向
	slotQuality      = slotVariety + 1    // 文案品质词占比；用户侧为 1-价格敏感度
	slotDiscount     = slotQuality + 1    // 文案折扣词占比；用户侧为折扣偏好
	slotEngagement   = slotDiscount + 1   // 购买量：purchases/1000；用户侧为 totalPurchases/100
	slotMonetary     = slotEngagement + 1 // 转化率 purchases/views；用户侧为 totalSpent/10000
	slotMorning      = slotMonetary + 1   // 早间点击占比（仅用户，商品编码 0）
	slotWeekend      = slotMorning + 1    // 周末点击占比（仅用户，商品编码 0）
	slotBrand        = slotWeekend + 1    // 品牌信号：商品是否有品牌；用户侧为品牌忠诚度
	slotCategoryBase = slotBrand + 1      // 类目 one-hot 起始位，宽度 = len(Categories)
)

// DefaultCategories 是默认的零售类目词表。
// 词表固定顺序决定 one-hot 维度；替换随机占位编码，保证确定性、可测试。
var DefaultCategories = []string{
	"electronics", "clothing", "shoes", "accessories",
	"home", "beauty", "sports", "toys",
	"books", "food", "jewelry", "other",
}

// DefaultQualityVocab 是文案中的"品质"词表。
var DefaultQualityVocab = []string{
	"premium", "quality", "luxury", "durable", "crafted", "authentic", "original",
}

// DefaultDiscountVocab 是文案中的"折扣"词表。
var DefaultDiscountVocab = []string{
	"sale", "discount", "cheap", "deal", "clearance", "budget", "offer",
}

// Encoder 把原始的商品/用户记录编码为定长数值向量。
// 纯函数：同一记录、同一词表、同一时钟下输出恒定；
// 同一代（generation）内所有商品向量维度一致，用户向量亦然。
type Encoder struct {
	// Categories 类目词表，决定 one-hot 宽度；为空时使用 DefaultCategories
	Categories []string

	// QualityVocab / DiscountVocab 文案词表
	QualityVocab  []string
	DiscountVocab []string

	// Now 注入时钟（当季指示位依赖日历季节）；为空时使用 time.Now
	Now func() time.Time
}

// NewEncoder 创建使用默认词表的编码器。
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) categories() []string {
	if len(e.Categories) > 0 {
		return e.Categories
	}
	return DefaultCategories
}

func (e *Encoder) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Dim 返回向量维度（基础槽位 + 类目 one-hot）。
func (e *Encoder) Dim() int {
	return slotCategoryBase + len(e.categories())
}

// EncodeProduct 把商品记录编码为属性向量。
func (e *Encoder) EncodeProduct(p *core.Product) Vector {
	vec := make(Vector, e.Dim())
	if p == nil {
		return vec
	}

	vec[slotPriceTier] = clamp01(p.Price / 1000)
	vec[slotPopularity] = clamp01(float64(p.Analytics.Views) / 10000)
	vec[slotRating] = clamp01(p.Analytics.AvgRating / 5)

	for _, s := range p.Attributes.Seasons {
		if idx := core.SeasonIndex(s); idx >= 0 {
			vec[slotSeasonBase+idx] = 1
		}
	}

	variety := len(p.Attributes.Colors) + len(p.Attributes.Sizes) + len(p.Attributes.Materials)
	vec[slotVariety] = clamp01(float64(variety) / 30)

	quality, discount := e.lexicalSignals(p.Name + " " + p.Description)
	vec[slotQuality] = quality
	vec[slotDiscount] = discount

	vec[slotEngagement] = clamp01(float64(p.Analytics.Purchases) / 1000)
	if p.Analytics.Views > 0 {
		vec[slotMonetary] = clamp01(float64(p.Analytics.Purchases) / float64(p.Analytics.Views))
	}

	if p.Brand != "" {
		vec[slotBrand] = 1
	}

	e.encodeCategory(vec, p.Category, 1)
	return vec
}

// EncodeUser 把用户画像投影到与商品相同的特征基底。
// 商品没有对应物的维度（点击时段占比）商品侧编码 0。
func (e *Encoder) EncodeUser(u *core.UserProfile) Vector {
	vec := make(Vector, e.Dim())
	if u == nil {
		return vec
	}

	vec[slotPriceTier] = clamp01(u.PreferredPriceRange.Mid() / 1000)
	vec[slotPopularity] = clamp01(u.Scores.TrendAffinity)
	vec[slotRating] = clamp01(u.Scores.QualityFocus)

	if idx := core.SeasonIndex(core.SeasonOf(e.now())); idx >= 0 {
		vec[slotSeasonBase+idx] = 1
	}

	vec[slotVariety] = clamp01(u.Scores.CategoryExploration)
	vec[slotQuality] = clamp01(1 - u.Scores.PriceSensitivity)
	vec[slotDiscount] = clamp01(u.Scores.DiscountAffinity)
	vec[slotEngagement] = clamp01(float64(u.Stats.TotalPurchases) / 100)
	vec[slotMonetary] = clamp01(u.Stats.TotalSpent / 10000)
	vec[slotBrand] = clamp01(u.Scores.BrandLoyalty)

	morning, weekend := clickShares(&u.Stats)
	vec[slotMorning] = morning
	vec[slotWeekend] = weekend

	for _, c := range u.PreferredCategories {
		e.encodeCategory(vec, c, 1)
	}
	return vec
}

// encodeCategory 在类目 one-hot 区段写入指示值；词表外的类目落入 "other" 槽位。
func (e *Encoder) encodeCategory(vec Vector, category string, value float64) {
	if category == "" {
		return
	}
	cats := e.categories()
	category = strings.ToLower(category)
	for i, c := range cats {
		if c == category {
			vec[slotCategoryBase+i] = value
			return
		}
	}
	for i, c := range cats {
		if c == "other" {
			vec[slotCategoryBase+i] = value
			return
		}
	}
}

// lexicalSignals 统计文案中品质/折扣词的出现占比。
func (e *Encoder) lexicalSignals(text string) (quality, discount float64) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0, 0
	}

	qualityVocab := e.QualityVocab
	if len(qualityVocab) == 0 {
		qualityVocab = DefaultQualityVocab
	}
	discountVocab := e.DiscountVocab
	if len(discountVocab) == 0 {
		discountVocab = DefaultDiscountVocab
	}

	var qHits, dHits int
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:()")
		for _, w := range qualityVocab {
			if tok == w {
				qHits++
				break
			}
		}
		for _, w := range discountVocab {
			if tok == w {
				dHits++
				break
			}
		}
	}
	return clamp01(float64(qHits) / float64(len(tokens))), clamp01(float64(dHits) / float64(len(tokens)))
}

// clickShares 从点击时间直方图计算早间（6-11 点）与周末占比。
func clickShares(stats *core.BehaviorStats) (morning, weekend float64) {
	var total, morningClicks int64
	for h, n := range stats.ClicksByHour {
		total += n
		if h >= 6 && h < 12 {
			morningClicks += n
		}
	}
	if total > 0 {
		morning = float64(morningClicks) / float64(total)
	}

	var weekTotal, weekendClicks int64
	for d, n := range stats.ClicksByWeekday {
		weekTotal += n
		// time.Weekday: 0=Sunday, 6=Saturday
		if d == 0 || d == 6 {
			weekendClicks += n
		}
	}
	if weekTotal > 0 {
		weekend = float64(weekendClicks) / float64(weekTotal)
	}
	return morning, weekend
}
