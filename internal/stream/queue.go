package stream

import (
	"context"
)

// Handler 处理来自消息队列的一条命令。
type Handler func(ctx context.Context, msg Message) error

// Producer 负责向队列投递命令。
type Producer interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Consumer 负责从队列中消费命令。
type Consumer interface {
	Consume(ctx context.Context, workerCount int, handler Handler) error
	Close() error
}

// ReplySink 接收解释器的应答。
type ReplySink interface {
	Reply(ctx context.Context, reply Reply) error
}

// Queue 同时具备投递、消费与应答能力。
type Queue interface {
	Producer
	Consumer
	ReplySink
}
