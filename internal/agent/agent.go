package agent

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"CalendarAgent/internal/calendar"
	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

// CodeUnrecognizedCommand 标记没有任何规则匹配的命令。
const CodeUnrecognizedCommand xerrors.Code = "UNRECOGNIZED_COMMAND"

func init() {
	xerrors.Register(CodeUnrecognizedCommand, xerrors.Attributes{
		Message:  "unrecognized command",
		Severity: xerrors.SeverityInfo,
	})
}

// Result 是一次命令解释的结果。Err 仅用于日志与统计，Response 已经包含面向用户的说明。
type Result struct {
	Intent   Intent
	Response string
	Err      error
}

// Agent 将一行文本归类为意图并在日程存储上执行，是系统的业务核心。
// 同一时刻只处理一条命令，多个命令来源共享同一个 Agent 时按获取锁的先后执行。
type Agent struct {
	mu     sync.Mutex
	store  calendar.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option 定义可选的 Agent 配置。
type Option func(*Agent)

// WithClock 替换用于解析 today/tomorrow 的时钟。
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger 指定诊断日志输出。
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// New 创建一个 Agent。
func New(store calendar.Store, opts ...Option) *Agent {
	ag := &Agent{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(ag)
		}
	}
	if ag.logger == nil {
		ag.logger = logger.Named("agent")
	}
	return ag
}

// Execute 解释一行命令并返回响应文本，从不返回错误。
func (a *Agent) Execute(ctx context.Context, line string) string {
	return a.Interpret(ctx, line).Response
}

// Interpret 解释一行命令，返回意图与响应。
func (a *Agent) Interpret(ctx context.Context, line string) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	line = strings.TrimSpace(line)

	r, in, ok := classify(line)
	if !ok {
		a.logger.DebugContext(ctx, "未识别的命令", slog.String("line", line))
		return Result{
			Intent:   IntentUnrecognized,
			Response: MessageUnrecognized,
			Err:      xerrors.New(CodeUnrecognizedCommand, ""),
		}
	}

	result := a.dispatch(r, in)
	if result.Err != nil {
		a.logger.InfoContext(ctx, "命令参数无效",
			slog.String("intent", r.intent.String()),
			slog.String("code", string(xerrors.CodeOf(result.Err))),
			slog.String("error", result.Err.Error()),
		)
	}
	a.logger.DebugContext(ctx, "命令已处理",
		slog.String("intent", r.intent.String()),
		slog.Duration("duration", time.Since(start)),
	)
	return result
}

func (a *Agent) dispatch(r rule, in args) (result Result) {
	result.Intent = r.intent
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("命令处理异常", slog.String("intent", r.intent.String()), slog.Any("panic", rec))
			result.Response = MessageUnrecognized
			result.Err = xerrors.New(xerrors.CodeUnknown, "command handler panicked")
		}
	}()
	result.Response, result.Err = r.handle(a, in)
	return result
}

func (a *Agent) today() calendar.Date {
	return calendar.DateOf(a.now())
}

func (a *Agent) handleAdd(in args) (string, error) {
	date, err := resolveDate(in.date, a.today())
	if err != nil {
		return MessageBadDateTime, err
	}
	at, err := resolveTime(in.time)
	if err != nil {
		return MessageBadDateTime, err
	}

	event := a.store.Add(in.title, date, at)
	logger.Audit().Info("event added",
		slog.Int64("event_id", event.ID),
		slog.String("title", event.Title),
		slog.String("date", event.Date.String()),
		slog.Bool("all_day", event.AllDay()),
	)
	return renderAdded(event), nil
}

func (a *Agent) handleViewByDate(in args) (string, error) {
	date, err := resolveDate(in.date, a.today())
	if err != nil {
		return MessageBadDateTime, err
	}
	return renderDay(date, a.store.Query(date)), nil
}

func (a *Agent) handleViewUpcoming(args) (string, error) {
	return renderUpcoming(a.store.QueryUpcoming(a.today())), nil
}

func (a *Agent) handleDelete(in args) (string, error) {
	id, err := strconv.ParseInt(in.id, 10, 64)
	if err != nil {
		// 超出 int64 的 ID 不可能被分配过。
		return renderDeleted(in.id, false), nil
	}
	deleted := a.store.Delete(id)
	if deleted {
		logger.Audit().Info("event deleted", slog.Int64("event_id", id))
	}
	return renderDeleted(strconv.FormatInt(id, 10), deleted), nil
}

func (a *Agent) handleHelp(args) (string, error) {
	return HelpText, nil
}
