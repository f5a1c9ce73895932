package store

import (
	"slices"
	"sync"
	"testing"

	"github.com/sakif/caloriesnap/internal/model"
)

func logWithID(id string, calories float64) model.Log {
	return model.Log{ID: id, FoodName: "food " + id, Calories: calories, MealType: model.MealLunch}
}

func ids(logs []model.Log) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.ID
	}
	return out
}

func equalIDs(got []model.Log, want ...string) bool {
	return slices.Equal(ids(got), want)
}

func TestNew_Empty(t *testing.T) {
	s := New()

	if _, ok := s.Profile(); ok {
		t.Fatal("Profile() ok = true on empty store")
	}
	logs := s.Logs()
	if logs == nil || len(logs) != 0 {
		t.Fatalf("Logs() = %v, want empty non-nil slice", logs)
	}
}

func TestSetProfile_Replaces(t *testing.T) {
	s := New()
	s.SetProfile(model.Profile{ID: "u1", DailyCalorieGoal: 2000})
	s.SetProfile(model.Profile{ID: "u1", DailyCalorieGoal: 1800})

	p, ok := s.Profile()
	if !ok || p.DailyCalorieGoal != 1800 {
		t.Fatalf("Profile() = %+v, %v; want goal 1800", p, ok)
	}
}

func TestSetLogs_LastWriteWins(t *testing.T) {
	s := New()
	s.SetLogs([]model.Log{logWithID("a", 1), logWithID("b", 2)})
	s.SetLogs([]model.Log{logWithID("c", 3)})

	if got := s.Logs(); !equalIDs(got, "c") {
		t.Fatalf("Logs() = %v, want [c]", ids(got))
	}
}

func TestSetLogs_CopiesInput(t *testing.T) {
	s := New()
	in := []model.Log{logWithID("a", 1)}
	s.SetLogs(in)
	in[0].ID = "mutated"

	if got := s.Logs(); !equalIDs(got, "a") {
		t.Fatalf("store shares caller's slice: %v", ids(got))
	}
}

func TestAddLog_PrependsWithoutDedupe(t *testing.T) {
	s := New()
	s.SetLogs([]model.Log{logWithID("old", 1)})
	s.AddLog(logWithID("new", 2))
	s.AddLog(logWithID("new", 2))

	if got := s.Logs(); !equalIDs(got, "new", "new", "old") {
		t.Fatalf("Logs() = %v, want [new new old]", ids(got))
	}
}

func TestRemoveLog(t *testing.T) {
	s := New()
	s.SetLogs([]model.Log{logWithID("a", 1), logWithID("b", 2), logWithID("a", 3)})

	s.RemoveLog("a")
	if got := s.Logs(); !equalIDs(got, "b") {
		t.Fatalf("after RemoveLog(a) = %v, want [b]", ids(got))
	}

	s.RemoveLog("missing")
	if got := s.Logs(); !equalIDs(got, "b") {
		t.Fatalf("RemoveLog of absent id changed state: %v", ids(got))
	}
}

func TestLogs_ReturnsCopy(t *testing.T) {
	s := New()
	s.SetLogs([]model.Log{logWithID("a", 1)})

	got := s.Logs()
	got[0].ID = "changed"

	if again := s.Logs(); !equalIDs(again, "a") {
		t.Fatalf("Logs() exposed internal slice: %v", ids(again))
	}
}

func TestSnapshot_IsolatedFromLaterWrites(t *testing.T) {
	s := New()
	s.SetProfile(model.Profile{ID: "u1", DailyCalorieGoal: 2000})
	s.SetLogs([]model.Log{logWithID("a", 1)})

	snap := s.Snapshot()
	s.AddLog(logWithID("b", 2))
	s.SetProfile(model.Profile{ID: "u1", DailyCalorieGoal: 1500})

	if !equalIDs(snap.Logs, "a") {
		t.Fatalf("snapshot logs changed: %v", ids(snap.Logs))
	}
	if snap.Profile == nil || snap.Profile.DailyCalorieGoal != 2000 {
		t.Fatalf("snapshot profile changed: %+v", snap.Profile)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.SetProfile(model.Profile{ID: "u1"})
	s.AddLog(logWithID("a", 1))

	s.Reset()

	if _, ok := s.Profile(); ok {
		t.Fatal("profile survived Reset")
	}
	if n := len(s.Logs()); n != 0 {
		t.Fatalf("len(Logs()) = %d after Reset", n)
	}
}

func TestSubscribe(t *testing.T) {
	s := New()

	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.AddLog(logWithID("a", 1))
	s.RemoveLog("a")

	if len(got) != 2 {
		t.Fatalf("callbacks = %d, want 2", len(got))
	}
	if !equalIDs(got[0].Logs, "a") || len(got[1].Logs) != 0 {
		t.Fatalf("unexpected snapshots: %v, %v", ids(got[0].Logs), ids(got[1].Logs))
	}

	cancel()
	s.AddLog(logWithID("b", 2))
	if len(got) != 2 {
		t.Fatalf("callback ran after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddLog(logWithID("x", 1))
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	if n := len(s.Logs()); n != 50 {
		t.Fatalf("len(Logs()) = %d, want 50", n)
	}
}
