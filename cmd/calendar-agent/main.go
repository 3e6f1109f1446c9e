package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"CalendarAgent/internal/agent"
	"CalendarAgent/internal/calendar"
	"CalendarAgent/internal/config"
	"CalendarAgent/internal/console"
	"CalendarAgent/internal/stream"
	"CalendarAgent/pkg/logger"
)

// main 是日程助手的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("calendar-agent 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("关闭日志输出失败: %v", err)
		}
	}()

	store := calendar.NewMemoryStore()
	ag := agent.New(store)

	switch cfg.Transport.Driver {
	case config.DriverConsole:
		return runConsole(ctx, cfg, store, ag)
	case config.DriverMemory:
		return runLoopback(ctx, cfg, store, ag)
	case config.DriverRedis, config.DriverRabbitMQ:
		return runQueue(ctx, cfg, ag)
	default:
		return fmt.Errorf("未知的命令来源驱动: %s", cfg.Transport.Driver)
	}
}

// runConsole 直接在标准输入输出上运行交互式会话。
func runConsole(ctx context.Context, cfg *config.Config, store *calendar.MemoryStore, exec console.Executor) error {
	session := console.New(os.Stdin, os.Stdout, exec,
		console.WithPrompt(cfg.Console.Prompt),
		console.HideBanner(cfg.Console.HideBanner),
		console.OnClose(logStats(store)),
	)

	// 标准输入的读取无法被取消，收到信号时直接返回。
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()
	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// runLoopback 让交互式会话经由内存队列驱动解释器。
func runLoopback(ctx context.Context, cfg *config.Config, store *calendar.MemoryStore, ag *agent.Agent) error {
	queue := stream.NewMemoryQueue(cfg.Transport.Workers * 16)
	service := stream.NewService(queue)
	defer service.Close()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := stream.NewLoopback(service, "console")
	processor := stream.NewProcessor(ag, queue, loop, stream.WithWorkerCount(cfg.Transport.Workers))
	go func() {
		if err := processor.Start(sessionCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("命令处理器异常退出", slog.Any("error", err))
		}
	}()

	return runConsole(sessionCtx, cfg, store, loop)
}

// runQueue 从 Redis 或 RabbitMQ 消费命令，直到收到退出信号。
func runQueue(ctx context.Context, cfg *config.Config, ag *agent.Agent) error {
	var queue stream.Queue
	switch cfg.Transport.Driver {
	case config.DriverRedis:
		q, err := stream.NewRedisQueue(ctx, stream.RedisQueueConfig{
			Address:    cfg.Transport.Redis.Address,
			Password:   cfg.Transport.Redis.Password,
			DB:         cfg.Transport.Redis.DB,
			Queue:      cfg.Transport.Redis.Queue,
			ReplyQueue: cfg.Transport.Redis.ReplyQueue,
			BlockWait:  cfg.Transport.Redis.BlockWait(),
		})
		if err != nil {
			return err
		}
		queue = q
	case config.DriverRabbitMQ:
		q, err := stream.NewRabbitMQQueue(stream.RabbitMQConfig{
			URL:        cfg.Transport.RabbitMQ.URL,
			Queue:      cfg.Transport.RabbitMQ.Queue,
			ReplyQueue: cfg.Transport.RabbitMQ.ReplyQueue,
			Prefetch:   cfg.Transport.RabbitMQ.Prefetch,
			Durable:    cfg.Transport.RabbitMQ.Durable,
			AutoDelete: cfg.Transport.RabbitMQ.AutoDelete,
		})
		if err != nil {
			return err
		}
		queue = q
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.L().Warn("关闭命令队列失败", slog.Any("error", err))
		}
	}()

	processor := stream.NewProcessor(ag, queue, queue, stream.WithWorkerCount(cfg.Transport.Workers))
	if err := processor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logStats(store *calendar.MemoryStore) func(*slog.Logger) {
	return func(l *slog.Logger) {
		stats := store.Stats()
		l.Info("会话结束",
			slog.Int("events", stats.Total),
			slog.Int("all_day", stats.AllDay),
			slog.Int("timed", stats.Timed),
			slog.Int64("created", stats.Created),
		)
	}
}
