package ws

import (
	"github.com/rs/zerolog/log"
)

// init 注册 Error 事件处理器
func init() {
	register("Error", func() Event {
		return &Error{}
	})
}

// Error 表示服务器拒绝了一个操作
type Error struct {
	Message string `json:"message"`
}

// Execute 房间不存在等不可恢复的错误会结束房间，其余错误只通知用户
func (e *Error) Execute(r *Room) error {
	outcome, terminal := ClassifyError(e.Message)
	if terminal {
		r.teardown(outcome)
		return nil
	}
	log.Debug().Str("message", e.Message).Msg("action rejected")
	if notice, ok := outcome.Notice(); ok {
		r.notify(notice)
	}
	return nil
}
