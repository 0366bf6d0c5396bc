package core

// ProductAttributes 是商品的结构化属性集合。
type ProductAttributes struct {
	Colors    []string
	Sizes     []string
	Materials []string
	Seasons   []Season
	Features  []string
}

// ProductAnalytics 是商品的统计计数器。
// 推荐引擎只读商品记录本身；计数器是例外——Interaction Tracker
// 在事件处理过程中作为副作用递增它们。
type ProductAnalytics struct {
	Views         int64
	Purchases     int64
	CartAdds      int64
	WishlistAdds  int64
	AvgRating     float64 // 0-5
	TrendingScore float64
}

// Product 是外部商品管理方拥有的商品记录，推荐引擎按 id 引用。
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Brand       string
	Attributes  ProductAttributes
	Analytics   ProductAnalytics
	Featured    bool
	Active      bool
}

// InSeason 检查商品季节列表是否包含指定季节。
func (p *Product) InSeason(s Season) bool {
	for _, v := range p.Attributes.Seasons {
		if v == s {
			return true
		}
	}
	return false
}
