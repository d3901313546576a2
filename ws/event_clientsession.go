package ws

import (
	"github.com/AsterZephyr/screego-client/ice"
	"github.com/rs/xid"
)

// init 注册 clientsession 事件处理器
func init() {
	register("clientsession", func() Event {
		return &ClientSession{}
	})
}

// ClientSession 通知本端作为客户端接收一个共享者的媒体
type ClientSession struct {
	ID         xid.ID       `json:"id"`
	Peer       xid.ID       `json:"peer"`
	ICEServers []ice.Server `json:"iceServers"`
}

// Execute 创建观看会话，之后等待主机的 offer
func (e *ClientSession) Execute(r *Room) error {
	_, err := r.newSession(e.ID, RoleViewer, e.Peer, e.ICEServers)
	return err
}
