package interaction

import (
	"math"
	"time"

	"github.com/rushteam/shoprec/core"
)

// 交互分数的组成：时效衰减占 0.7，停留时长占 0.3。
// 同一用户-商品的重复交互取 max 而不是求和：一次强的新交互
// 压过多次弱的旧交互。
const (
	recencyWeight   = 0.7
	durationWeight  = 0.3
	recencyHalfDays = 30.0
)

// Matrix 是一代用户×商品交互分数矩阵的只读快照。
// 不变式：Cells 的第 i 行 / 第 j 列永远对应快照时刻的
// UserIDs[i] / ProductIDs[j]，三者不会处于不一致的代。
// 整体重建、原子替换，从不原地增量修改。
type Matrix struct {
	UserIDs    []string
	ProductIDs []string
	Cells      [][]float64

	userIndex    map[string]int
	productIndex map[string]int
}

// Row 返回用户对应的行；用户不在快照中时返回 (nil, false)——冷启动不是错误。
func (m *Matrix) Row(userID string) ([]float64, bool) {
	idx, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return m.Cells[idx], true
}

// Cell 返回指定用户-商品的交互分数，任一不在快照中时返回 0。
func (m *Matrix) Cell(userID, productID string) float64 {
	ui, ok := m.userIndex[userID]
	if !ok {
		return 0
	}
	pi, ok := m.productIndex[productID]
	if !ok {
		return 0
	}
	return m.Cells[ui][pi]
}

// ProductIndex 返回商品列下标。
func (m *Matrix) ProductIndex(productID string) (int, bool) {
	idx, ok := m.productIndex[productID]
	return idx, ok
}

// Score 计算单次交互事件的分数：
//
//	recency  = exp(-距今天数 / 30)         // 指数衰减，偏向新交互
//	duration = min(停留秒数/60, 10) / 10   // 时长归一化
//	score    = recency*0.7 + duration*0.3
func Score(ev core.Interaction, now time.Time) float64 {
	days := now.Sub(ev.Timestamp).Hours() / 24
	if days < 0 {
		days = 0
	}
	recency := math.Exp(-days / recencyHalfDays)

	minutes := ev.Duration.Seconds() / 60
	if minutes > 10 {
		minutes = 10
	}
	duration := minutes / 10

	return recency*recencyWeight + duration*durationWeight
}

// BuildMatrix 从事件快照整体重建交互矩阵。
// 只纳入活跃用户集与在售商品集；从未出现的用户/商品没有行/列。
// O(用户数 × 每用户事件数)；一致性靠整体原子替换保证，没有局部写。
func BuildMatrix(users []*core.UserProfile, products []*core.Product, events map[string][]core.Interaction, now time.Time) *Matrix {
	m := &Matrix{
		UserIDs:      make([]string, 0, len(users)),
		ProductIDs:   make([]string, 0, len(products)),
		userIndex:    make(map[string]int, len(users)),
		productIndex: make(map[string]int, len(products)),
	}

	for _, u := range users {
		if u == nil || u.UserID == "" {
			continue
		}
		if _, ok := m.userIndex[u.UserID]; ok {
			continue
		}
		m.userIndex[u.UserID] = len(m.UserIDs)
		m.UserIDs = append(m.UserIDs, u.UserID)
	}
	for _, p := range products {
		if p == nil || p.ID == "" {
			continue
		}
		if _, ok := m.productIndex[p.ID]; ok {
			continue
		}
		m.productIndex[p.ID] = len(m.ProductIDs)
		m.ProductIDs = append(m.ProductIDs, p.ID)
	}

	m.Cells = make([][]float64, len(m.UserIDs))
	for i := range m.Cells {
		m.Cells[i] = make([]float64, len(m.ProductIDs))
	}

	for userID, list := range events {
		ui, ok := m.userIndex[userID]
		if !ok {
			continue
		}
		row := m.Cells[ui]
		for _, ev := range list {
			pi, ok := m.productIndex[ev.ProductID]
			if !ok {
				continue
			}
			if score := Score(ev, now); score > row[pi] {
				row[pi] = score
			}
		}
	}

	return m
}
