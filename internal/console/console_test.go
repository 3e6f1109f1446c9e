package console

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"CalendarAgent/internal/agent"
	"CalendarAgent/internal/calendar"
	xerrors "CalendarAgent/internal/errors"
)

type recordingExecutor struct {
	lines []string
}

func (r *recordingExecutor) Execute(_ context.Context, line string) string {
	r.lines = append(r.lines, line)
	return "echo: " + line
}

func TestSessionTranscript(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	session := New(strings.NewReader("help\nview today\nexit\nnever read\n"), &out, exec)

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Banner + "\n" +
		"\n> Your command: echo: help\n" +
		"\n> Your command: echo: view today\n" +
		"\n> Your command: Goodbye!\n"
	if out.String() != want {
		t.Fatalf("unexpected transcript:\n%q\nwant:\n%q", out.String(), want)
	}
	if len(exec.lines) != 2 {
		t.Fatalf("lines after exit must not be processed: %v", exec.lines)
	}
}

func TestSessionExitIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"EXIT\n", "Exit\r\n", "eXiT"} {
		exec := &recordingExecutor{}
		var out bytes.Buffer
		if err := New(strings.NewReader(input), &out, exec, HideBanner(true)).Run(context.Background()); err != nil {
			t.Fatalf("%q: run: %v", input, err)
		}
		if len(exec.lines) != 0 || !strings.HasSuffix(out.String(), "Goodbye!\n") {
			t.Fatalf("%q: unexpected result %q %v", input, out.String(), exec.lines)
		}
	}
}

func TestSessionEndOfInputSaysGoodbye(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	if err := New(strings.NewReader("hi"), &out, exec, HideBanner(true), WithPrompt("$ ")).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "\n$ echo: hi\n\n$ Goodbye!\n" {
		t.Fatalf("unexpected transcript: %q", out.String())
	}
}

func TestSessionWithInterpreter(t *testing.T) {
	now := func() time.Time { return time.Date(2025, time.December, 13, 9, 0, 0, 0, time.Local) }
	store := calendar.NewMemoryStore()
	ag := agent.New(store, agent.WithClock(now))

	input := "add dentist appointment tomorrow at 14:30\nshow my schedule\ndelete event 1\nshow my schedule\n"
	var out bytes.Buffer
	var closed bool
	session := New(strings.NewReader(input), &out, ag, HideBanner(true), OnClose(func(*slog.Logger) { closed = true }))
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"Event 'dentist appointment' added for 2025-12-14 at 14:30 (ID 1).",
		"Upcoming Events:\n- [2025-12-14 14:30] dentist appointment",
		"Event with ID 1 deleted.",
		"No upcoming events.",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("transcript missing %q:\n%s", want, out.String())
		}
	}
	if !closed {
		t.Fatal("close hook not called")
	}
	if session.ID() == "" {
		t.Fatal("session id should be assigned")
	}
}

func TestSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(strings.NewReader("help\n"), &bytes.Buffer{}, &recordingExecutor{}, HideBanner(true)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSessionRequiresExecutor(t *testing.T) {
	err := New(strings.NewReader(""), &bytes.Buffer{}, nil).Run(context.Background())
	if xerrors.CodeOf(err) != xerrors.CodeInitializationFailure {
		t.Fatalf("expected initialization failure, got %v", err)
	}
}
