package agent

import (
	"strings"

	"CalendarAgent/internal/calendar"
)

// resolveDate 将日期片段解析为具体日期：today、tomorrow（不区分大小写）或 YYYY-MM-DD。
func resolveDate(token string, today calendar.Date) (calendar.Date, error) {
	switch strings.ToLower(token) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	default:
		return calendar.ParseDate(token)
	}
}

// resolveTime 解析可选的时间片段，空片段表示全天事件。
func resolveTime(token string) (*calendar.Clock, error) {
	if token == "" {
		return nil, nil
	}
	clock, err := calendar.ParseClock(token)
	if err != nil {
		return nil, err
	}
	return &clock, nil
}
