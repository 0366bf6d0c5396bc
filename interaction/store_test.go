package interaction

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func TestStore_AppendAndCap(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Append(core.Interaction{
			UserID:    "u1",
			ProductID: fmt.Sprintf("p%d", i),
			Kind:      core.InteractionView,
			Timestamp: time.Now(),
		})
	}

	events := s.Events("u1")
	if len(events) != 3 {
		t.Fatalf("expected cap at 3 events, got %d", len(events))
	}
	// oldest events are dropped, newest kept in order
	for i, want := range []string{"p2", "p3", "p4"} {
		if events[i].ProductID != want {
			t.Errorf("events[%d] = %s, want %s", i, events[i].ProductID, want)
		}
	}
}

func TestStore_DropsInvalidEvents(t *testing.T) {
	s := NewStore(10)
	s.Append(core.Interaction{UserID: "", ProductID: "p1"})
	s.Append(core.Interaction{UserID: "u1", ProductID: ""})
	if len(s.Events("u1")) != 0 || len(s.UserIDs()) != 0 {
		t.Errorf("events without user or product id must be dropped")
	}
}

func TestStore_RecentProductIDs(t *testing.T) {
	s := NewStore(10)
	now := time.Now()
	s.Append(core.Interaction{UserID: "u1", ProductID: "p1", Kind: core.InteractionView, Timestamp: now})
	s.Append(core.Interaction{UserID: "u1", ProductID: "p2", Kind: core.InteractionPurchase, Timestamp: now})
	s.Append(core.Interaction{UserID: "u1", ProductID: "p3", Kind: core.InteractionView, Timestamp: now})
	s.Append(core.Interaction{UserID: "u1", ProductID: "p1", Kind: core.InteractionView, Timestamp: now})

	// newest first, deduplicated
	got := s.RecentProductIDs("u1", 0)
	want := []string{"p1", "p3", "p2"}
	if len(got) != len(want) {
		t.Fatalf("RecentProductIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentProductIDs[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// filter by kind
	views := s.RecentProductIDs("u1", 0, core.InteractionView)
	if len(views) != 2 || views[0] != "p1" || views[1] != "p3" {
		t.Errorf("view-only RecentProductIDs = %v, want [p1 p3]", views)
	}

	// limit applies after dedup
	limited := s.RecentProductIDs("u1", 1)
	if len(limited) != 1 || limited[0] != "p1" {
		t.Errorf("limited RecentProductIDs = %v, want [p1]", limited)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(10)
	s.Append(core.Interaction{UserID: "u1", ProductID: "p1", Kind: core.InteractionView})

	snap := s.Snapshot()
	snap["u1"][0].ProductID = "mutated"

	if s.Events("u1")[0].ProductID != "p1" {
		t.Errorf("mutating a snapshot must not affect the store")
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(1000)
	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", u)
			for i := 0; i < 100; i++ {
				s.Append(core.Interaction{
					UserID:    userID,
					ProductID: fmt.Sprintf("p%d", i),
					Kind:      core.InteractionView,
				})
				s.RecentProductIDs(userID, 10)
			}
		}(u)
	}
	wg.Wait()

	for u := 0; u < 8; u++ {
		if got := len(s.Events(fmt.Sprintf("u%d", u))); got != 100 {
			t.Errorf("user u%d has %d events, want 100", u, got)
		}
	}
}
