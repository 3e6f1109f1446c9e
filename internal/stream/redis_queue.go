package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

// RedisQueueConfig 描述 Redis 队列的连接参数。
type RedisQueueConfig struct {
	Address    string
	Password   string
	DB         int
	Queue      string
	ReplyQueue string
	BlockWait  time.Duration
}

// RedisQueue 使用 Redis list 实现命令队列：LPUSH 入队，BRPOP 出队，应答 LPUSH 到独立的 list。
type RedisQueue struct {
	client     *redis.Client
	queue      string
	replyQueue string
	wait       time.Duration
	logger     *slog.Logger
}

// NewRedisQueue 创建 Redis 队列实例并检查连通性。
func NewRedisQueue(ctx context.Context, cfg RedisQueueConfig) (*RedisQueue, error) {
	if cfg.Address == "" {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "Redis address 不能为空")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "calendar:commands"
	}
	replyQueue := cfg.ReplyQueue
	if replyQueue == "" {
		replyQueue = "calendar:replies"
	}
	wait := cfg.BlockWait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, xerrors.Wrap(xerrors.CodeTransportFailure, err, "连接 Redis 失败")
	}
	return &RedisQueue{
		client:     client,
		queue:      queue,
		replyQueue: replyQueue,
		wait:       wait,
		logger:     logger.Named("stream.redis"),
	}, nil
}

// Publish 将命令投递到 Redis。
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	body, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.queue, body).Err(); err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "Redis 发布命令失败")
	}
	return nil
}

// Consume 通过 BRPOP 从 Redis 获取命令。
// 命令会修改日程，处理失败的消息不会重新入队，避免重复执行。
func (q *RedisQueue) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, workerCount)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				values, err := q.client.BRPop(ctx, q.wait, q.queue).Result()
				if err != nil {
					if errors.Is(err, redis.Nil) {
						continue
					}
					if ctx.Err() != nil {
						return
					}
					errCh <- xerrors.Wrap(xerrors.CodeQueueFailure, err, "Redis 取命令失败")
					return
				}
				if len(values) != 2 {
					continue
				}
				msg, err := decodeMessage([]byte(values[1]))
				if err != nil {
					q.logger.Warn("丢弃无法解析的命令", slog.Any("error", err))
					continue
				}
				if handlerErr := handler(ctx, msg); handlerErr != nil {
					q.logger.Error("命令处理失败", slog.String("message_id", msg.ID), slog.Any("error", handlerErr))
				}
			}
		}()
	}

	// 等待第一个错误或取消信号。
	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	return err
}

// Reply 将应答推送到应答 list。
func (q *RedisQueue) Reply(ctx context.Context, reply Reply) error {
	body, err := encodeReply(reply)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.replyQueue, body).Err(); err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "Redis 写入应答失败")
	}
	return nil
}

// Close 关闭 Redis 连接。
func (q *RedisQueue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

var _ Queue = (*RedisQueue)(nil)
