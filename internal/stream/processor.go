package stream

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"CalendarAgent/internal/agent"
	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

// Executor 定义了处理器所需的解释器能力。
type Executor interface {
	Interpret(ctx context.Context, line string) agent.Result
}

// Processor 负责从队列消费命令、交给解释器执行并写回应答。
type Processor struct {
	executor    Executor
	consumer    Consumer
	sink        ReplySink
	workerCount int
	logger      *slog.Logger
	now         func() time.Time
}

// ProcessorOption 定义可选配置。
type ProcessorOption func(*Processor)

// WithProcessorLogger 指定日志输出。
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWorkerCount 设置消费协程数量。
func WithWorkerCount(workers int) ProcessorOption {
	return func(p *Processor) {
		if workers > 0 {
			p.workerCount = workers
		}
	}
}

// NewProcessor 构造 Processor。sink 为空时应答只记录日志。
func NewProcessor(executor Executor, consumer Consumer, sink ReplySink, opts ...ProcessorOption) *Processor {
	p := &Processor{
		executor:    executor,
		consumer:    consumer,
		sink:        sink,
		workerCount: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.logger == nil {
		p.logger = logger.Named("stream.processor")
	}
	return p
}

// Start 启动命令处理循环，阻塞直到 ctx 取消或消费者退出。
func (p *Processor) Start(ctx context.Context) error {
	if p.consumer == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "未配置命令消费者")
	}
	if p.executor == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "未配置命令解释器")
	}
	p.logger.Info("命令处理器启动", slog.Int("workers", p.workerCount))
	return p.consumer.Consume(ctx, p.workerCount, p.handle)
}

func (p *Processor) handle(ctx context.Context, msg Message) error {
	reply := Reply{
		ID:      msg.ID,
		Session: msg.Session,
		Line:    msg.Line,
		ReplyTo: msg.ReplyTo,
	}

	// 队列没有会话可以结束，exit 只得到告别语。
	if strings.EqualFold(strings.TrimSpace(msg.Line), agent.ExitCommand) {
		reply.Intent = agent.ExitCommand
		reply.Response = agent.MessageGoodbye
	} else {
		result := p.executor.Interpret(ctx, msg.Line)
		reply.Intent = result.Intent.String()
		reply.Response = result.Response
		if result.Err != nil {
			p.logger.Debug("命令未成功执行",
				slog.String("message_id", msg.ID),
				slog.String("code", string(xerrors.CodeOf(result.Err))),
			)
		}
	}
	reply.HandledAt = p.now().UTC()

	if p.sink == nil {
		p.logger.Info("命令已处理", slog.String("message_id", msg.ID), slog.String("response", reply.Response))
		return nil
	}
	if err := p.sink.Reply(ctx, reply); err != nil {
		p.logger.Error("写回应答失败", slog.Any("error", err), slog.String("message_id", msg.ID))
		return err
	}
	return nil
}
