package stream

import (
	"context"
	"log/slog"
	"strings"

	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

// Service 负责把命令行封装为 Message 并投递到队列。
type Service struct {
	producer Producer
	logger   *slog.Logger
}

// NewService 构造命令投递服务。
func NewService(producer Producer) *Service {
	return &Service{producer: producer, logger: logger.Named("stream.service")}
}

// Submit 为命令分配 ID 并推送到队列，空白命令会被拒绝。
func (s *Service) Submit(ctx context.Context, session, line string) (Message, error) {
	msg := NewMessage(session, line)
	if err := s.Publish(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Publish 投递一条已构造好的命令。
func (s *Service) Publish(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Line) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "命令不能为空")
	}
	if s.producer == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "命令服务未初始化")
	}
	if err := s.producer.Publish(ctx, msg); err != nil {
		s.logger.Error("命令入队失败", slog.Any("error", err), slog.String("message_id", msg.ID))
		if _, ok := xerrors.From(err); ok {
			return err
		}
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "发布命令到队列失败")
	}
	s.logger.Debug("命令已入队",
		slog.String("message_id", msg.ID),
		slog.String("session", msg.Session),
	)
	return nil
}

// Close 释放底层队列。
func (s *Service) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
