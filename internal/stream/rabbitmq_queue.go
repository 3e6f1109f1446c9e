package stream

import (
	"context"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

// RabbitMQConfig 描述 RabbitMQ 队列的连接参数。
type RabbitMQConfig struct {
	URL        string
	Queue      string
	ReplyQueue string
	Prefetch   int
	Durable    bool
	AutoDelete bool
}

// RabbitMQQueue 使用 RabbitMQ 实现命令队列。
// 应答发布到消息自带的 ReplyTo 队列，未指定时发布到 ReplyQueue，CorrelationId 为命令 ID。
type RabbitMQQueue struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	pubMu      sync.Mutex
	queue      string
	replyQueue string
	logger     *slog.Logger
}

// NewRabbitMQQueue 创建 RabbitMQ 队列实例并声明命令与应答队列。
func NewRabbitMQQueue(cfg RabbitMQConfig) (*RabbitMQQueue, error) {
	if cfg.URL == "" {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "RabbitMQ URL 不能为空")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "calendar.commands"
	}
	replyQueue := cfg.ReplyQueue
	if replyQueue == "" {
		replyQueue = "calendar.replies"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransportFailure, err, "连接 RabbitMQ 失败")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, xerrors.Wrap(xerrors.CodeTransportFailure, err, "创建 RabbitMQ channel 失败")
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, xerrors.Wrap(xerrors.CodeTransportFailure, err, "设置 RabbitMQ QOS 失败")
		}
	}
	for _, name := range []string{queue, replyQueue} {
		if _, err := ch.QueueDeclare(name, cfg.Durable, cfg.AutoDelete, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "声明 RabbitMQ 队列失败", xerrors.WithMetadata("queue", name))
		}
	}
	return &RabbitMQQueue{
		conn:       conn,
		ch:         ch,
		queue:      queue,
		replyQueue: replyQueue,
		logger:     logger.Named("stream.rabbitmq"),
	}, nil
}

// Publish 将命令投递到 RabbitMQ。
func (q *RabbitMQQueue) Publish(ctx context.Context, msg Message) error {
	if q == nil || q.ch == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "RabbitMQ 队列未初始化")
	}
	body, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := q.publish(ctx, q.queue, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   msg.ID,
		ReplyTo:     msg.ReplyTo,
		Timestamp:   msg.SubmittedAt,
		Body:        body,
	}); err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "RabbitMQ 发布命令失败")
	}
	return nil
}

// Consume 使用手动确认模式消费 RabbitMQ 队列。
func (q *RabbitMQQueue) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if q == nil || q.ch == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "RabbitMQ 队列未初始化")
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "订阅 RabbitMQ 队列失败")
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					q.deliver(ctx, d, handler)
				}
			}
		}()
	}

	wg.Wait()
	return ctx.Err()
}

func (q *RabbitMQQueue) deliver(ctx context.Context, d amqp.Delivery, handler Handler) {
	msg, err := decodeMessage(d.Body)
	if err != nil {
		q.logger.Warn("丢弃无法解析的命令", slog.String("delivery_id", d.MessageId), slog.Any("error", err))
		_ = d.Nack(false, false)
		return
	}
	if msg.ReplyTo == "" {
		msg.ReplyTo = d.ReplyTo
	}
	if err := handler(ctx, msg); err != nil {
		q.logger.Error("命令处理失败", slog.String("message_id", msg.ID), slog.Any("error", err))
	}
	// 命令会修改日程，失败时同样确认，避免重复执行。
	_ = d.Ack(false)
}

// Reply 发布应答。
func (q *RabbitMQQueue) Reply(ctx context.Context, reply Reply) error {
	body, err := encodeReply(reply)
	if err != nil {
		return err
	}
	target := reply.ReplyTo
	if target == "" {
		target = q.replyQueue
	}
	if err := q.publish(ctx, target, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: reply.ID,
		Timestamp:     reply.HandledAt,
		Body:          body,
	}); err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "RabbitMQ 发布应答失败", xerrors.WithMetadata("queue", target))
	}
	return nil
}

func (q *RabbitMQQueue) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	return q.ch.PublishWithContext(ctx, "", key, false, false, msg)
}

// Close 关闭 RabbitMQ 连接。
func (q *RabbitMQQueue) Close() error {
	if q == nil {
		return nil
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

var _ Queue = (*RabbitMQQueue)(nil)
