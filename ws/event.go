package ws

import (
	"errors"

	"github.com/AsterZephyr/screego-client/notify"
	"github.com/rs/zerolog/log"
)

// Event 是房间事件循环处理的事件
// 控制通道消息、传输层通知和本地操作都实现此接口，并在同一个循环中依次执行
type Event interface {
	Execute(r *Room) error
}

// Disconnected 表示控制通道已关闭
type Disconnected struct {
	Code   int
	Reason string
}

// Execute 按关闭原因拆除整个房间
func (e *Disconnected) Execute(r *Room) error {
	log.Debug().Int("code", e.Code).Str("reason", e.Reason).Msg("control channel closed")
	r.teardown(ClassifyClose(e.Reason))
	return nil
}

// Malformed 表示一条无法识别或无法解析的消息，仅作为诊断通知
type Malformed struct {
	Type string
	Err  error
}

// Execute 通知用户并忽略该消息
func (e *Malformed) Execute(r *Room) error {
	key := notify.MalformedMessage
	if errors.Is(e.Err, ErrUnknownType) {
		key = notify.UnknownEvent
	}
	r.notify(notify.Notice{Level: notify.Error, Key: key, Args: []interface{}{e.Type}})
	return nil
}
