package agent

import (
	"fmt"
	"strings"

	"CalendarAgent/internal/calendar"
)

const (
	MessageUnrecognized = "I didn't understand that command. Type 'help' for available commands."
	MessageBadDateTime  = "Could not understand the date or time. Please use YYYY-MM-DD, 'today', or 'tomorrow' for dates and HH:MM (24-hour) for times."
	MessageNoUpcoming   = "No upcoming events."
	MessageGoodbye      = "Goodbye!"
)

// ExitCommand 结束交互式会话，比较时不区分大小写。
const ExitCommand = "exit"

// HelpText 列出所有支持的命令。
const HelpText = "Hello! I am your AI Calendar Agent.\n" +
	"Here are the commands you can use:\n" +
	"- Add an event: `add <title> on <YYYY-MM-DD> [at <HH:MM>]` (e.g., `add meeting on 2023-12-25 at 10:00`)\n" +
	"- Add an event for today/tomorrow: `add <title> today [at <HH:MM>]` (e.g., `add dentist appointment tomorrow at 14:30`)\n" +
	"- View events for a date: `view events on <YYYY-MM-DD>` or `what's happening today`\n" +
	"- View all upcoming events: `view all events` or `show my schedule`\n" +
	"- Delete an event: `delete event <ID>` (the ID is shown when the event is added)\n" +
	"- Type 'exit' to quit."

func renderAdded(e calendar.Event) string {
	at := ""
	if e.Time != nil {
		at = " at " + e.Time.String()
	}
	return fmt.Sprintf("Event '%s' added for %s%s (ID %d).", e.Title, e.Date, at, e.ID)
}

func renderDay(date calendar.Date, events []calendar.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf("No events found for %s.", date)
	}
	return renderList(fmt.Sprintf("Events for %s:", date), events)
}

func renderUpcoming(events []calendar.Event) string {
	if len(events) == 0 {
		return MessageNoUpcoming
	}
	return renderList("Upcoming Events:", events)
}

func renderList(header string, events []calendar.Event) string {
	var b strings.Builder
	b.WriteString(header)
	for _, e := range events {
		b.WriteString("\n- ")
		b.WriteString(e.String())
	}
	return b.String()
}

func renderDeleted(id string, deleted bool) string {
	if deleted {
		return fmt.Sprintf("Event with ID %s deleted.", id)
	}
	return fmt.Sprintf("No event found with ID %s.", id)
}
