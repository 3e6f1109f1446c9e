package calendar

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func at(hour, minute int) *Clock {
	return &Clock{Hour: hour, Minute: minute}
}

func ids(events []Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryStoreIDsNeverReused(t *testing.T) {
	store := NewMemoryStore()
	day := mustDate(t, "2025-12-14")

	first := store.Add("one", day, nil)
	second := store.Add("two", day, nil)
	if !store.Delete(second.ID) {
		t.Fatalf("expected delete of %d to succeed", second.ID)
	}
	third := store.Add("three", day, nil)
	if !store.Delete(first.ID) {
		t.Fatalf("expected delete of %d to succeed", first.ID)
	}
	fourth := store.Add("four", day, nil)

	got := []int64{first.ID, second.ID, third.ID, fourth.ID}
	if !equalIDs(got, []int64{1, 2, 3, 4}) {
		t.Fatalf("expected ids 1..4, got %v", got)
	}
	if stats := store.Stats(); stats.Total != 2 || stats.Created != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMemoryStoreDeleteIsIrreversible(t *testing.T) {
	store := NewMemoryStore()
	day := mustDate(t, "2025-12-14")
	event := store.Add("meeting", day, at(10, 0))

	if !store.Delete(event.ID) {
		t.Fatalf("expected first delete to succeed")
	}
	if store.Delete(event.ID) {
		t.Fatalf("expected repeated delete to report false")
	}
	if got := store.Query(day); len(got) != 0 {
		t.Fatalf("deleted event still returned by Query: %v", got)
	}
	if got := store.QueryUpcoming(day.AddDays(-30)); len(got) != 0 {
		t.Fatalf("deleted event still returned by QueryUpcoming: %v", got)
	}
	if NewMemoryStore().Delete(1) {
		t.Fatalf("expected delete on empty store to report false")
	}
}

func TestMemoryStoreQueryOrdersAllDayFirst(t *testing.T) {
	store := NewMemoryStore()
	day := mustDate(t, "2024-01-01")

	c := store.Add("C", day, at(17, 0))
	b := store.Add("B", day, at(9, 0))
	a := store.Add("A", day, nil)
	store.Add("other day", day.AddDays(1), nil)

	got := store.Query(day)
	if !equalIDs(ids(got), []int64{a.ID, b.ID, c.ID}) {
		t.Fatalf("expected [A B C], got %v", got)
	}
	if got := store.Query(mustDate(t, "2023-12-31")); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestMemoryStoreQueryTiesKeepInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	day := mustDate(t, "2024-01-01")
	first := store.Add("first", day, at(9, 0))
	second := store.Add("second", day, at(9, 0))
	allDay1 := store.Add("all day 1", day, nil)
	allDay2 := store.Add("all day 2", day, nil)

	got := store.Query(day)
	want := []int64{allDay1.ID, allDay2.ID, first.ID, second.ID}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestMemoryStoreQueryUpcoming(t *testing.T) {
	store := NewMemoryStore()
	today := mustDate(t, "2024-06-01")

	store.Add("yesterday", mustDate(t, "2024-05-31"), at(23, 59))
	later := store.Add("later", mustDate(t, "2024-06-03"), nil)
	todayTimed := store.Add("today timed", today, at(8, 30))
	todayAllDay := store.Add("today all day", today, nil)
	nextYear := store.Add("next year", mustDate(t, "2025-01-01"), at(0, 0))

	got := store.QueryUpcoming(today)
	want := []int64{todayAllDay.ID, todayTimed.ID, later.ID, nextYear.ID}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	if got := store.QueryUpcoming(mustDate(t, "2026-01-01")); len(got) != 0 {
		t.Fatalf("expected nothing upcoming, got %v", got)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	day := mustDate(t, "2024-01-01")
	clock := at(9, 0)
	created := store.Add("standup", day, clock)

	clock.Hour = 23
	created.Time.Minute = 45
	queried := store.Query(day)
	queried[0].Time.Hour = 1

	again := store.Query(day)
	if again[0].Time.String() != "09:00" {
		t.Fatalf("store state leaked through returned pointers: %s", again[0].Time)
	}
}

func TestMemoryStoreConcurrentAdds(t *testing.T) {
	store := NewMemoryStore()
	day := DateOf(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))

	const workers, perWorker = 8, 50
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWorker; i++ {
				store.Add("x", day, nil)
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	got := store.Query(day)
	if len(got) != workers*perWorker {
		t.Fatalf("expected %d events, got %d", workers*perWorker, len(got))
	}
	for i, e := range got {
		if e.ID != int64(i+1) {
			t.Fatalf("expected dense ids in order, got %d at %d", e.ID, i)
		}
	}
}
