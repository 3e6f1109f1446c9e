package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"CalendarAgent/internal/agent"
	xerrors "CalendarAgent/internal/errors"
	"CalendarAgent/pkg/logger"
)

const (
	// Banner 在会话开始时输出一次。
	Banner = "Welcome to the AI Calendar Agent!\nType 'help' for a list of commands, or 'exit' to quit."
	// DefaultPrompt 在每次读取命令前输出，前面附带一个空行。
	DefaultPrompt = "> Your command: "
)

// Executor 把一行命令转换为响应文本。
type Executor interface {
	Execute(ctx context.Context, line string) string
}

// Session 是一次交互式会话。
type Session struct {
	id         string
	in         io.Reader
	out        io.Writer
	exec       Executor
	prompt     string
	hideBanner bool
	logger     *slog.Logger
	onClose    func(*slog.Logger)
}

// Option 定义可选的会话配置。
type Option func(*Session)

// WithPrompt 替换提示符。
func WithPrompt(prompt string) Option {
	return func(s *Session) {
		if prompt != "" {
			s.prompt = prompt
		}
	}
}

// HideBanner 控制是否省略欢迎语。
func HideBanner(hide bool) Option {
	return func(s *Session) {
		s.hideBanner = hide
	}
}

// WithSessionID 指定会话 ID，默认随机生成。
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger 指定诊断日志输出。
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// OnClose 注册会话结束时的回调，常用于记录日程统计。
func OnClose(fn func(*slog.Logger)) Option {
	return func(s *Session) {
		s.onClose = fn
	}
}

// New 创建一个会话。
func New(in io.Reader, out io.Writer, exec Executor, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		in:     in,
		out:    out,
		exec:   exec,
		prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logger.Named("console")
	}
	s.logger = s.logger.With(slog.String("session", s.id))
	return s
}

// ID 返回会话 ID。
func (s *Session) ID() string {
	return s.id
}

// Run 执行读取-解释-输出循环，直到输入 exit、输入结束或 ctx 取消。
// 每条响应都在读取下一行之前写出。
func (s *Session) Run(ctx context.Context) error {
	if s.exec == nil {
		return xerrors.New(xerrors.CodeInitializationFailure, "会话未配置解释器")
	}
	defer func() {
		if s.onClose != nil {
			s.onClose(s.logger)
		}
	}()

	if !s.hideBanner {
		if err := s.println(Banner); err != nil {
			return err
		}
	}
	s.logger.Debug("会话开始")

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	commands := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprint(s.out, "\n"+s.prompt); err != nil {
			return xerrors.Wrap(xerrors.CodeTransportFailure, err, "写入提示符失败")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return xerrors.Wrap(xerrors.CodeTransportFailure, err, "读取命令失败")
			}
			s.logger.Debug("输入结束", slog.Int("commands", commands))
			return s.println(agent.MessageGoodbye)
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.EqualFold(line, agent.ExitCommand) {
			s.logger.Debug("会话结束", slog.Int("commands", commands))
			return s.println(agent.MessageGoodbye)
		}

		commands++
		if err := s.println(s.exec.Execute(ctx, line)); err != nil {
			return err
		}
	}
}

func (s *Session) println(text string) error {
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return xerrors.Wrap(xerrors.CodeTransportFailure, err, "写入响应失败")
	}
	return nil
}
