package ws

import (
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// init 注册 clientanswer 事件处理器
func init() {
	register("clientanswer", func() Event {
		return &ClientAnswer{}
	})
}

// ClientAnswer 表示观看者对本端 offer 的 answer
type ClientAnswer struct {
	SID   xid.ID                    `json:"sid"`
	Value webrtc.SessionDescription `json:"value"`
}

// Execute 将 answer 应用为共享会话的远端描述
func (e *ClientAnswer) Execute(r *Room) error {
	session := r.hosts.Get(e.SID)
	if session == nil {
		log.Debug().Str("sid", e.SID.String()).Msg("unknown session")
		return nil
	}

	answer := e.Value
	session.enqueue(func(t Transport) error {
		if err := session.setRemote(t, answer); err != nil {
			return fmt.Errorf("set remote answer: %w", err)
		}
		return nil
	})
	return nil
}
