package agent

import (
	"regexp"
	"strings"
)

// args 保存匹配阶段从命令中提取出的原始片段，尚未校验。
type args struct {
	title string
	date  string
	time  string
	id    string
}

// matcher 判断一行命令是否属于某个意图，并提取参数。
type matcher func(line string) (args, bool)

// rule 是分派表中的一项。规则按顺序尝试，第一个匹配的规则胜出。
type rule struct {
	intent Intent
	match  matcher
	handle func(a *Agent, in args) (string, error)
}

const dateToken = `\d{4}-\d{2}-\d{2}|today|tomorrow`

var (
	// add <title> [on|for] <date> [at <time>]，必须匹配整行。
	addPattern = regexp.MustCompile(`(?i)^add\s+(?P<title>.+?)\s*(?:on|for)?\s*(?P<date>` + dateToken + `)(?:\s+at\s+(?P<time>\S+))?$`)
	// (view|show|what's happening) [events [on|for] | schedule] <date>，只要求前缀匹配。
	viewPattern   = regexp.MustCompile(`(?i)^(?:view|show|what's happening)\s+(?:events\s+(?:on\s+|for\s+)?|schedule\s+)?(?P<date>` + dateToken + `)`)
	deletePattern = regexp.MustCompile(`^delete\s+event\s+(?P<id>\d+)$`)

	upcomingPhrases = []string{"view all events", "show upcoming events", "show my schedule"}
	helpTriggers    = []string{"help", "hi", "hello"}
)

// rules 的顺序即优先级，调整顺序会改变歧义输入的归类结果。
var rules = []rule{
	{intent: IntentAdd, match: matchAdd, handle: (*Agent).handleAdd},
	{intent: IntentViewByDate, match: matchViewByDate, handle: (*Agent).handleViewByDate},
	{intent: IntentViewUpcoming, match: matchViewUpcoming, handle: (*Agent).handleViewUpcoming},
	{intent: IntentDelete, match: matchDelete, handle: (*Agent).handleDelete},
	{intent: IntentHelp, match: matchHelp, handle: (*Agent).handleHelp},
}

// classify 返回第一个匹配的规则；没有规则匹配时 ok 为 false。
func classify(line string) (rule, args, bool) {
	for _, r := range rules {
		if in, ok := r.match(line); ok {
			return r, in, true
		}
	}
	return rule{intent: IntentUnrecognized}, args{}, false
}

func matchAdd(line string) (args, bool) {
	m := addPattern.FindStringSubmatch(line)
	if m == nil {
		return args{}, false
	}
	title := strings.TrimSpace(m[addPattern.SubexpIndex("title")])
	if title == "" {
		return args{}, false
	}
	return args{
		title: title,
		date:  m[addPattern.SubexpIndex("date")],
		time:  m[addPattern.SubexpIndex("time")],
	}, true
}

func matchViewByDate(line string) (args, bool) {
	m := viewPattern.FindStringSubmatch(line)
	if m == nil {
		return args{}, false
	}
	return args{date: m[viewPattern.SubexpIndex("date")]}, true
}

func matchViewUpcoming(line string) (args, bool) {
	for _, phrase := range upcomingPhrases {
		if strings.Contains(line, phrase) {
			return args{}, true
		}
	}
	return args{}, false
}

func matchDelete(line string) (args, bool) {
	m := deletePattern.FindStringSubmatch(line)
	if m == nil {
		return args{}, false
	}
	return args{id: m[deletePattern.SubexpIndex("id")]}, true
}

func matchHelp(line string) (args, bool) {
	for _, trigger := range helpTriggers {
		if line == trigger {
			return args{}, true
		}
	}
	return args{}, false
}
