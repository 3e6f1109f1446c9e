package calendar

import (
	"cmp"
	"fmt"
	"time"

	xerrors "CalendarAgent/internal/errors"
)

const dateLayout = "2006-01-02"

const (
	CodeInvalidDate xerrors.Code = "INVALID_DATE"
	CodeInvalidTime xerrors.Code = "INVALID_TIME"
)

func init() {
	xerrors.Register(CodeInvalidDate, xerrors.Attributes{Message: "invalid calendar date", Severity: xerrors.SeverityInfo})
	xerrors.Register(CodeInvalidTime, xerrors.Attributes{Message: "invalid time of day", Severity: xerrors.SeverityInfo})
}

// Date 是不带时区的日历日期。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf 取 t 所在时区的日历日期。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate 严格按照 YYYY-MM-DD 解析日期，拒绝不存在的日期（如 2025-02-30）。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, xerrors.Wrap(CodeInvalidDate, err, fmt.Sprintf("无法解析日期 %q", s))
	}
	return DateOf(t), nil
}

// AddDays 返回 n 天之后的日期，自动处理跨月跨年。
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// Compare 按时间先后比较两个日期，返回 -1、0 或 1。
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmp.Compare(d.Year, other.Year)
	case d.Month != other.Month:
		return cmp.Compare(int(d.Month), int(other.Month))
	default:
		return cmp.Compare(d.Day, other.Day)
	}
}

// Before 报告 d 是否早于 other。
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// IsZero 报告日期是否未设置。
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Clock 是 24 小时制的钟点时间。
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock 解析 H:MM 或 HH:MM 形式的 24 小时制时间。
func ParseClock(s string) (Clock, error) {
	invalid := func() (Clock, error) {
		return Clock{}, xerrors.New(CodeInvalidTime, fmt.Sprintf("无法解析时间 %q", s))
	}

	var hourDigits int
	switch {
	case len(s) == 4 && s[1] == ':':
		hourDigits = 1
	case len(s) == 5 && s[2] == ':':
		hourDigits = 2
	default:
		return invalid()
	}

	hour, ok := atoi(s[:hourDigits])
	if !ok {
		return invalid()
	}
	minute, ok := atoi(s[hourDigits+1:])
	if !ok {
		return invalid()
	}
	if hour > 23 || minute > 59 {
		return invalid()
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Compare 按先后比较两个时间，返回 -1、0 或 1。
func (c Clock) Compare(other Clock) int {
	if c.Hour != other.Hour {
		return cmp.Compare(c.Hour, other.Hour)
	}
	return cmp.Compare(c.Minute, other.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Event 是日程中的一条记录。Time 为空表示全天事件。
type Event struct {
	ID    int64
	Title string
	Date  Date
	Time  *Clock
}

// AllDay 报告事件是否为全天事件。
func (e Event) AllDay() bool { return e.Time == nil }

// String 渲染为 [YYYY-MM-DD HH:MM] title 或 [YYYY-MM-DD All Day] title。
func (e Event) String() string {
	when := "All Day"
	if e.Time != nil {
		when = e.Time.String()
	}
	return fmt.Sprintf("[%s %s] %s", e.Date, when, e.Title)
}

// compareEvents 定义查询结果的顺序：日期升序，同日内全天事件最先，其余按时间升序，最后按 ID。
func compareEvents(a, b Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.Time == nil && b.Time != nil:
		return -1
	case a.Time != nil && b.Time == nil:
		return 1
	case a.Time != nil && b.Time != nil:
		if c := a.Time.Compare(*b.Time); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

func cloneEvent(e Event) Event {
	if e.Time != nil {
		t := *e.Time
		e.Time = &t
	}
	return e
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
