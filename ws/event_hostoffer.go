package ws

import (
	"fmt"

	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// init 注册 hostoffer 事件处理器
func init() {
	register("hostoffer", func() Event {
		return &HostOffer{}
	})
}

// HostOffer 表示主机发送的 SDP offer
type HostOffer struct {
	SID   xid.ID                    `json:"sid"`
	Value webrtc.SessionDescription `json:"value"`
}

// Execute 依次应用远端描述、创建 answer、设置本地描述并发送 answer
func (e *HostOffer) Execute(r *Room) error {
	session := r.viewers.Get(e.SID)
	if session == nil {
		log.Debug().Str("sid", e.SID.String()).Msg("unknown session")
		return nil
	}

	offer := e.Value
	session.enqueue(func(t Transport) error {
		if err := session.setRemote(t, offer); err != nil {
			return fmt.Errorf("set remote offer: %w", err)
		}
		answer, err := t.CreateAnswer()
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		r.dispatch(&localDescription{session: session, msg: outgoing.ClientAnswer{SID: session.SID, Value: answer}})
		return nil
	})
	return nil
}
