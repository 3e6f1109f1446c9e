package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"CalendarAgent/internal/agent"
	"CalendarAgent/pkg/logger"
)

// MessageUndelivered 在命令无法经由队列送达解释器时返回。
const MessageUndelivered = "The command could not be delivered. Please try again."

// Loopback 把同步的 Execute 调用转换为一次入队与一次应答等待，
// 使交互式会话可以经由队列驱动解释器。它同时实现 ReplySink。
type Loopback struct {
	service *Service
	session string
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]chan Reply
}

// NewLoopback 创建一个绑定到指定会话的 Loopback。
func NewLoopback(service *Service, session string) *Loopback {
	return &Loopback{
		service: service,
		session: session,
		logger:  logger.Named("stream.loopback"),
		pending: make(map[string]chan Reply),
	}
}

// Execute 投递命令并等待对应的应答。
func (l *Loopback) Execute(ctx context.Context, line string) string {
	if strings.TrimSpace(line) == "" {
		return agent.MessageUnrecognized
	}
	msg := NewMessage(l.session, line)
	wait := make(chan Reply, 1)

	l.mu.Lock()
	l.pending[msg.ID] = wait
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.pending, msg.ID)
		l.mu.Unlock()
	}()

	if err := l.service.Publish(ctx, msg); err != nil {
		l.logger.Error("命令投递失败", slog.Any("error", err), slog.String("message_id", msg.ID))
		return MessageUndelivered
	}
	select {
	case <-ctx.Done():
		return MessageUndelivered
	case reply := <-wait:
		return reply.Response
	}
}

// Reply 将应答交给等待中的 Execute 调用，没有等待者的应答被丢弃。
func (l *Loopback) Reply(_ context.Context, reply Reply) error {
	l.mu.Lock()
	wait, ok := l.pending[reply.ID]
	l.mu.Unlock()
	if !ok {
		l.logger.Warn("丢弃无人等待的应答", slog.String("message_id", reply.ID))
		return nil
	}
	wait <- reply
	return nil
}

var _ ReplySink = (*Loopback)(nil)
