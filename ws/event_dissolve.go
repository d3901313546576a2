package ws

import (
	"github.com/AsterZephyr/screego-client/notify"
)

// init 注册 dissolve 事件处理器
func init() {
	register("dissolve", func() Event {
		return &Dissolve{}
	})
}

// Dissolve 表示服务器确认房间已解散
type Dissolve struct{}

// Execute 通知用户并退出房间
func (e *Dissolve) Execute(r *Room) error {
	r.notify(notify.Notice{Level: notify.Success, Key: notify.RoomDissolved})
	r.teardown(Outcome{Severity: Silent, ClearRoomID: true})
	return nil
}
