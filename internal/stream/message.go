package stream

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	xerrors "CalendarAgent/internal/errors"
)

// Message 是一条待解释的命令。
type Message struct {
	ID          string    `json:"id"`
	Session     string    `json:"session,omitempty"`
	Line        string    `json:"line"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Reply 是解释器对一条 Message 的应答，ID 与原消息一致。
type Reply struct {
	ID        string    `json:"id"`
	Session   string    `json:"session,omitempty"`
	Line      string    `json:"line"`
	Intent    string    `json:"intent"`
	Response  string    `json:"response"`
	ReplyTo   string    `json:"-"`
	HandledAt time.Time `json:"handled_at"`
}

// NewMessage 为命令分配一个新的 ID。
func NewMessage(session, line string) Message {
	return Message{
		ID:          uuid.NewString(),
		Session:     session,
		Line:        line,
		SubmittedAt: time.Now().UTC(),
	}
}

func encodeMessage(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "编码命令消息失败")
	}
	return body, nil
}

func decodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "无法解析命令消息")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return msg, nil
}

func encodeReply(reply Reply) ([]byte, error) {
	body, err := json.Marshal(reply)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "编码应答失败")
	}
	return body, nil
}
