// Package interaction 维护用户-商品交互历史、交互矩阵与写路径（Tracker）。
package interaction

import (
	"sync"
	"time"

	"github.com/rushteam/shoprec/core"
)

// Store 按用户维护最近的交互事件，追加写、每用户封顶保留最近 Cap 条。
// 不同用户的追加互不阻塞；同一用户内事件按到达顺序保存。
type Store struct {
	mu     sync.RWMutex
	events map[string][]core.Interaction
	cap    int
}

// NewStore 创建交互事件存储。cap <= 0 时使用默认上限 100。
func NewStore(cap int) *Store {
	if cap <= 0 {
		cap = core.RecommendDefaults{}.DefaultHistoryCap()
	}
	return &Store{
		events: make(map[string][]core.Interaction),
		cap:    cap,
	}
}

// Append 追加一条交互事件，超过上限时丢弃最旧的事件。
func (s *Store) Append(ev core.Interaction) {
	if ev.UserID == "" || ev.ProductID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.events[ev.UserID], ev)
	if len(list) > s.cap {
		list = list[len(list)-s.cap:]
	}
	s.events[ev.UserID] = list
}

// Events 返回用户全部保留事件的副本（从旧到新）。
func (s *Store) Events(userID string) []core.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.events[userID]
	out := make([]core.Interaction, len(list))
	copy(out, list)
	return out
}

// RecentProductIDs 返回用户最近交互过的商品 ID（去重，从新到旧），
// kinds 为空时不限事件类型。用于"排除近期浏览"过滤。
func (s *Store) RecentProductIDs(userID string, limit int, kinds ...core.InteractionKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.events[userID]
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		ev := list[i]
		if len(kinds) > 0 {
			match := false
			for _, k := range kinds {
				if ev.Kind == k {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		out = append(out, ev.ProductID)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// UserIDs 返回当前有事件记录的用户 ID 列表。
func (s *Store) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.events))
	for id := range s.events {
		out = append(out, id)
	}
	return out
}

// Snapshot 返回全量事件的一致性副本，供矩阵整体重建使用。
func (s *Store) Snapshot() map[string][]core.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]core.Interaction, len(s.events))
	for id, list := range s.events {
		cp := make([]core.Interaction, len(list))
		copy(cp, list)
		out[id] = cp
	}
	return out
}

// LastEventTime 返回用户最近一次事件的时间，没有事件时返回零值。
func (s *Store) LastEventTime(userID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.events[userID]
	if len(list) == 0 {
		return time.Time{}
	}
	return list[len(list)-1].Timestamp
}
