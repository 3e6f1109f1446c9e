package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"CalendarAgent/internal/calendar"
	xerrors "CalendarAgent/internal/errors"
)

// fixedNow 把 today 固定为 2025-12-13，使 tomorrow 为 2025-12-14。
func fixedNow() time.Time {
	return time.Date(2025, time.December, 13, 8, 0, 0, 0, time.Local)
}

func newTestAgent() (*Agent, *calendar.MemoryStore) {
	store := calendar.NewMemoryStore()
	return New(store, WithClock(fixedNow)), store
}

func TestAgentAddWithExplicitDateAndTime(t *testing.T) {
	ag, store := newTestAgent()
	ctx := context.Background()

	res := ag.Interpret(ctx, "add meeting on 2025-12-14 at 10:00")
	if res.Intent != IntentAdd || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Response != "Event 'meeting' added for 2025-12-14 at 10:00 (ID 1)." {
		t.Fatalf("unexpected response: %s", res.Response)
	}

	day, _ := calendar.ParseDate("2025-12-14")
	events := store.Query(day)
	if len(events) != 1 || events[0].Title != "meeting" || events[0].Time.String() != "10:00" {
		t.Fatalf("unexpected store contents: %+v", events)
	}

	view := ag.Execute(ctx, "view events on 2025-12-14")
	if view != "Events for 2025-12-14:\n- [2025-12-14 10:00] meeting" {
		t.Fatalf("unexpected view response: %q", view)
	}
}

func TestAgentAddTomorrow(t *testing.T) {
	ag, store := newTestAgent()

	got := ag.Execute(context.Background(), "add dentist appointment tomorrow at 14:30")
	if got != "Event 'dentist appointment' added for 2025-12-14 at 14:30 (ID 1)." {
		t.Fatalf("unexpected response: %s", got)
	}
	tomorrow := calendar.DateOf(fixedNow()).AddDays(1)
	events := store.Query(tomorrow)
	if len(events) != 1 || events[0].Title != "dentist appointment" {
		t.Fatalf("unexpected store contents: %+v", events)
	}
}

func TestAgentAddVariants(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"add meeting 2025-12-14 at 10:00", "Event 'meeting' added for 2025-12-14 at 10:00 (ID 1)."},
		{"add meeting for 2025-12-14 at 10:00", "Event 'meeting' added for 2025-12-14 at 10:00 (ID 1)."},
		{"add meeting today", "Event 'meeting' added for 2025-12-13 (ID 1)."},
		{"ADD Lunch With Sam TODAY AT 9:05", "Event 'Lunch With Sam' added for 2025-12-13 at 09:05 (ID 1)."},
		{"   add  standup   tomorrow   ", "Event 'standup' added for 2025-12-14 (ID 1)."},
		{"add release party on 2024-02-29", "Event 'release party' added for 2024-02-29 (ID 1)."},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			ag, _ := newTestAgent()
			if got := ag.Execute(context.Background(), tc.line); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAgentRejectsInvalidDateOrTime(t *testing.T) {
	cases := map[string]xerrors.Code{
		"add meeting on 2025-02-30":           calendar.CodeInvalidDate,
		"add meeting on 2025-13-01 at 10:00":  calendar.CodeInvalidDate,
		"add meeting on 2025-12-14 at 25:00":  calendar.CodeInvalidTime,
		"add meeting tomorrow at 9am":         calendar.CodeInvalidTime,
		"add meeting tomorrow at 10:60":       calendar.CodeInvalidTime,
		"view events on 2025-02-30":           calendar.CodeInvalidDate,
		"what's happening 2023-04-31 evening": calendar.CodeInvalidDate,
	}
	for line, code := range cases {
		t.Run(line, func(t *testing.T) {
			ag, store := newTestAgent()
			res := ag.Interpret(context.Background(), line)
			if res.Response != MessageBadDateTime {
				t.Fatalf("expected guidance message, got %q", res.Response)
			}
			if xerrors.CodeOf(res.Err) != code {
				t.Fatalf("expected %s, got %v", code, res.Err)
			}
			if stats := store.Stats(); stats.Created != 0 {
				t.Fatalf("rejected command must not touch the store: %+v", stats)
			}
		})
	}
}

func TestAgentAddWithEmptyTitleIsUnrecognized(t *testing.T) {
	for _, line := range []string{"add today", "add   today", "add tomorrow at 10:00", "add  TOMORROW"} {
		ag, store := newTestAgent()
		res := ag.Interpret(context.Background(), line)
		if res.Intent != IntentUnrecognized || res.Response != MessageUnrecognized {
			t.Fatalf("%q: expected unrecognized, got %+v", line, res)
		}
		if store.Stats().Created != 0 {
			t.Fatalf("%q: store should be untouched", line)
		}
	}
}

func TestAgentViewByDate(t *testing.T) {
	ag, _ := newTestAgent()
	ctx := context.Background()

	if got := ag.Execute(ctx, "what's happening today"); got != "No events found for 2025-12-13." {
		t.Fatalf("unexpected empty response: %q", got)
	}

	ag.Execute(ctx, "add gym today at 18:00")
	ag.Execute(ctx, "add holiday today")
	ag.Execute(ctx, "add coffee today at 07:30")
	ag.Execute(ctx, "add flight tomorrow")

	want := "Events for 2025-12-13:\n" +
		"- [2025-12-13 All Day] holiday\n" +
		"- [2025-12-13 07:30] coffee\n" +
		"- [2025-12-13 18:00] gym"
	for _, line := range []string{"view today", "show schedule today", "What's Happening TODAY", "view events for 2025-12-13", "show 2025-12-13 please"} {
		if got := ag.Execute(ctx, line); got != want {
			t.Fatalf("%q: expected %q, got %q", line, want, got)
		}
	}
	if got := ag.Execute(ctx, "show events tomorrow"); got != "Events for 2025-12-14:\n- [2025-12-14 All Day] flight" {
		t.Fatalf("unexpected tomorrow response: %q", got)
	}
}

func TestAgentViewUpcoming(t *testing.T) {
	ag, store := newTestAgent()
	ctx := context.Background()

	if got := ag.Execute(ctx, "show my schedule"); got != MessageNoUpcoming {
		t.Fatalf("expected no upcoming events, got %q", got)
	}

	yesterday := calendar.DateOf(fixedNow()).AddDays(-1)
	store.Add("missed", yesterday, nil)
	ag.Execute(ctx, "add review on 2026-01-05 at 09:00")
	ag.Execute(ctx, "add standup today at 09:30")
	ag.Execute(ctx, "add offsite today")

	want := "Upcoming Events:\n" +
		"- [2025-12-13 All Day] offsite\n" +
		"- [2025-12-13 09:30] standup\n" +
		"- [2026-01-05 09:00] review"
	for _, line := range []string{"view all events", "please show upcoming events now", "show my schedule"} {
		if got := ag.Execute(ctx, line); got != want {
			t.Fatalf("%q: expected %q, got %q", line, want, got)
		}
	}
	if res := ag.Interpret(ctx, "View All Events"); res.Intent != IntentUnrecognized {
		t.Fatalf("upcoming phrases are case-sensitive, got %s", res.Intent)
	}
}

func TestAgentDelete(t *testing.T) {
	ag, store := newTestAgent()
	ctx := context.Background()

	if got := ag.Execute(ctx, "delete event 99"); got != "No event found with ID 99." {
		t.Fatalf("unexpected response: %q", got)
	}

	ag.Execute(ctx, "add meeting today")
	if got := ag.Execute(ctx, "delete event 001"); got != "Event with ID 1 deleted." {
		t.Fatalf("unexpected response: %q", got)
	}
	if got := ag.Execute(ctx, "delete event 1"); got != "No event found with ID 1." {
		t.Fatalf("repeated delete should report not found, got %q", got)
	}
	if got := ag.Execute(ctx, "delete event 99999999999999999999999"); got != "No event found with ID 99999999999999999999999." {
		t.Fatalf("unexpected overflow response: %q", got)
	}
	if got := ag.Execute(ctx, "add next today"); !strings.Contains(got, "(ID 2)") {
		t.Fatalf("ids must not be reused after delete: %q", got)
	}
	if store.Stats().Total != 1 {
		t.Fatalf("unexpected stats: %+v", store.Stats())
	}

	for _, line := range []string{"Delete event 2", "delete event two", "delete event -2", "delete event 2 now"} {
		if res := ag.Interpret(ctx, line); res.Intent == IntentDelete {
			t.Fatalf("%q should not be classified as delete", line)
		}
	}
}

func TestAgentHelpAndUnrecognized(t *testing.T) {
	ag, _ := newTestAgent()
	ctx := context.Background()

	for _, line := range []string{"help", "hi", "hello", "  hello  "} {
		if got := ag.Execute(ctx, line); got != HelpText {
			t.Fatalf("%q: expected help text", line)
		}
	}
	for _, line := range []string{"bogus text", "Help", "help me", "", "exit"} {
		res := ag.Interpret(ctx, line)
		if res.Intent != IntentUnrecognized || res.Response != MessageUnrecognized {
			t.Fatalf("%q: expected unrecognized, got %+v", line, res)
		}
		if xerrors.CodeOf(res.Err) != CodeUnrecognizedCommand {
			t.Fatalf("%q: expected UNRECOGNIZED_COMMAND, got %v", line, res.Err)
		}
	}
}

func TestAgentPriorityOrder(t *testing.T) {
	ag, _ := newTestAgent()
	ctx := context.Background()

	cases := []struct {
		line string
		want Intent
	}{
		// add wins over the upcoming phrase it contains.
		{"add show my schedule today", IntentAdd},
		// no date token, so add does not match and the phrase does.
		{"add view all events", IntentViewUpcoming},
		// view by date wins over the upcoming phrase later in the line.
		{"show today and view all events", IntentViewByDate},
		{"view all events then delete event 3", IntentViewUpcoming},
		{"delete event 3", IntentDelete},
	}
	for _, tc := range cases {
		if res := ag.Interpret(ctx, tc.line); res.Intent != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.line, tc.want, res.Intent)
		}
	}
}

func TestAgentRoundTripTitles(t *testing.T) {
	ag, store := newTestAgent()
	ctx := context.Background()
	titles := []string{"pick up kids", "Q4 planning: budget & hiring", "call 555-0100", "on call"}

	for i, title := range titles {
		line := fmt.Sprintf("add %s on 2026-03-%02d at 1%d:15", title, i+1, i)
		if res := ag.Interpret(ctx, line); res.Intent != IntentAdd || res.Err != nil {
			t.Fatalf("%q: unexpected result %+v", line, res)
		}
	}

	start, _ := calendar.ParseDate("2026-03-01")
	events := store.QueryUpcoming(start)
	if len(events) != len(titles) {
		t.Fatalf("expected %d events, got %d", len(titles), len(events))
	}
	for i, e := range events {
		want := fmt.Sprintf("[2026-03-%02d 1%d:15] %s", i+1, i, titles[i])
		if e.String() != want {
			t.Fatalf("expected %q, got %q", want, e.String())
		}
	}
}
