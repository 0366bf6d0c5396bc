package core

import "time"

// PriceRange 是用户偏好的价格区间。Max <= 0 视为无上限。
type PriceRange struct {
	Min float64
	Max float64
}

// Contains 检查价格是否落在偏好区间内。
func (r PriceRange) Contains(price float64) bool {
	if price < r.Min {
		return false
	}
	if r.Max > 0 && price > r.Max {
		return false
	}
	return r.Min > 0 || r.Max > 0
}

// Mid 返回区间中点（无上限时返回下限），用于把价格偏好投影到特征基底。
func (r PriceRange) Mid() float64 {
	if r.Max <= 0 {
		return r.Min
	}
	return (r.Min + r.Max) / 2
}

// PersonalizationScores 是六个 [0,1] 标量个性化分数。
// 由外部用户管理方维护（通常离线产出），推荐引擎只读。
type PersonalizationScores struct {
	PriceSensitivity    float64 // 价格敏感度
	BrandLoyalty        float64 // 品牌忠诚度
	QualityFocus        float64 // 品质导向
	TrendAffinity       float64 // 潮流偏好
	DiscountAffinity    float64 // 折扣偏好
	CategoryExploration float64 // 类目探索倾向
}

// BehaviorStats 是用户的原始行为聚合。
type BehaviorStats struct {
	TotalPurchases int64
	TotalSpent     float64

	// ClicksByHour / ClicksByWeekday 是点击时间直方图（24 / 7 槽位）。
	// 缺失时按全 0 处理，编码为 0 而不是 missing。
	ClicksByHour    [24]int64
	ClicksByWeekday [7]int64
}

// UserProfile 是用户画像的核心抽象。
//
// 一句话定义：用户画像 = 推荐 Pipeline 的"全局上下文 + 特征源 + 决策信号"
//
// 它不是某一个 Node，而是：
//  - 被所有 Node 共享
//  - 驱动 Recall / Rank / ReRank（偏好区间与分数直接参与业务加权）
//  - 由外部用户管理方拥有，推荐引擎只读
type UserProfile struct {
	UserID string

	// 偏好画像（长期）- Content 召回与业务加权核心
	PreferredPriceRange PriceRange
	PreferredCategories []string
	PreferredBrands     []string
	Scores              PersonalizationScores

	// 行为聚合（长期统计）
	Stats BehaviorStats

	// 元数据
	UpdateTime time.Time // 最后更新时间
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:     userID,
		UpdateTime: time.Now(),
	}
}

// PrefersCategory 检查类目是否在偏好类目中。
func (p *UserProfile) PrefersCategory(category string) bool {
	for _, c := range p.PreferredCategories {
		if c == category {
			return true
		}
	}
	return false
}

// PrefersBrand 检查品牌是否在偏好品牌中。
func (p *UserProfile) PrefersBrand(brand string) bool {
	for _, b := range p.PreferredBrands {
		if b == brand {
			return true
		}
	}
	return false
}

// InPriceRange 检查价格是否落在偏好区间内。
func (p *UserProfile) InPriceRange(price float64) bool {
	return p.PreferredPriceRange.Contains(price)
}
