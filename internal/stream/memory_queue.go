package stream

import (
	"context"
	"sync"

	xerrors "CalendarAgent/internal/errors"
)

// MemoryQueue 使用 channel 模拟消息队列，用于测试与进程内嵌入。
type MemoryQueue struct {
	ch      chan Message
	replies chan Reply
	mu      sync.Mutex
	closed  bool
}

// NewMemoryQueue 创建一个内存队列，size 同时作为命令与应答的缓冲大小。
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{
		ch:      make(chan Message, size),
		replies: make(chan Reply, size),
	}
}

// Publish 将命令投递到队列。
func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return xerrors.New(xerrors.CodeQueueFailure, "队列已关闭")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- msg:
		return nil
	}
}

// Consume 启动指定数量的工作协程消费队列中的命令，直到 ctx 取消或队列关闭。
func (q *MemoryQueue) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
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
				case msg, ok := <-q.ch:
					if !ok {
						return
					}
					_ = handler(ctx, msg)
				}
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// Reply 将应答写入应答通道。
func (q *MemoryQueue) Reply(ctx context.Context, reply Reply) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.replies <- reply:
		return nil
	}
}

// Replies 返回应答通道。
func (q *MemoryQueue) Replies() <-chan Reply {
	return q.replies
}

// Close 关闭内存队列，已入队的命令仍会被消费完。
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if !q.closed {
		close(q.ch)
		q.closed = true
	}
	q.mu.Unlock()
	return nil
}

var _ Queue = (*MemoryQueue)(nil)
