package interaction

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		ev   core.Interaction
		want float64
	}{
		{
			// fresh event with 2 minutes of dwell:
			// exp(0)*0.7 + min(120/60,10)/10*0.3 = 0.7 + 0.06
			name: "fresh_with_duration",
			ev:   core.Interaction{Timestamp: testNow, Duration: 2 * time.Minute},
			want: 0.76,
		},
		{
			name: "fresh_no_duration",
			ev:   core.Interaction{Timestamp: testNow},
			want: 0.7,
		},
		{
			// duration is capped at 10 minutes
			name: "duration_capped",
			ev:   core.Interaction{Timestamp: testNow, Duration: 2 * time.Hour},
			want: 1.0,
		},
		{
			// 30 days old: exp(-1)*0.7
			name: "month_old",
			ev:   core.Interaction{Timestamp: testNow.AddDate(0, 0, -30)},
			want: math.Exp(-1) * 0.7,
		},
		{
			// clock skew: future timestamps count as "now"
			name: "future_timestamp",
			ev:   core.Interaction{Timestamp: testNow.Add(time.Hour)},
			want: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.ev, testNow)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_RecencyMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for days := 0; days <= 120; days += 10 {
		ev := core.Interaction{Timestamp: testNow.AddDate(0, 0, -days)}
		got := Score(ev, testNow)
		if got >= prev {
			t.Fatalf("score must decay with age: day %d scored %v, previous %v", days, got, prev)
		}
		prev = got
	}
}

func buildTestMatrix(events map[string][]core.Interaction) *Matrix {
	users := []*core.UserProfile{
		{UserID: "u1"}, {UserID: "u2"},
	}
	products := []*core.Product{
		{ID: "p1", Active: true}, {ID: "p2", Active: true},
	}
	return BuildMatrix(users, products, events, testNow)
}

func TestBuildMatrix_MaxMerge(t *testing.T) {
	weak := core.Interaction{UserID: "u1", ProductID: "p1", Timestamp: testNow.AddDate(0, 0, -60)}
	strong := core.Interaction{UserID: "u1", ProductID: "p1", Timestamp: testNow, Duration: time.Minute}

	m := buildTestMatrix(map[string][]core.Interaction{
		"u1": {weak, strong, weak},
	})

	want := Score(strong, testNow)
	if got := m.Cell("u1", "p1"); math.Abs(got-want) > 1e-9 {
		t.Errorf("repeated interactions take the max: got %v, want %v", got, want)
	}
}

func TestBuildMatrix_UnknownEntitiesIgnored(t *testing.T) {
	m := buildTestMatrix(map[string][]core.Interaction{
		"ghost": {{UserID: "ghost", ProductID: "p1", Timestamp: testNow}},
		"u1":    {{UserID: "u1", ProductID: "discontinued", Timestamp: testNow}},
	})

	if len(m.UserIDs) != 2 || len(m.ProductIDs) != 2 {
		t.Fatalf("matrix axes come from the catalog snapshot, got %dx%d", len(m.UserIDs), len(m.ProductIDs))
	}
	if _, ok := m.Row("ghost"); ok {
		t.Errorf("users outside the snapshot must not get a row")
	}
	if got := m.Cell("u1", "p1"); got != 0 {
		t.Errorf("events on unknown products must not leak into known cells, got %v", got)
	}
}

func TestMatrix_RowColdStart(t *testing.T) {
	m := buildTestMatrix(nil)
	if _, ok := m.Row("newcomer"); ok {
		t.Errorf("unknown user must return ok=false, not an error")
	}
	if got := m.Cell("newcomer", "p1"); got != 0 {
		t.Errorf("unknown user cell = %v, want 0", got)
	}
}
