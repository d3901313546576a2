package ws

import (
	"github.com/rs/xid"
)

// init 注册 endshare 事件处理器
func init() {
	register("endshare", func() Event {
		return &EndShare{}
	})
}

// EndShare 表示服务器结束了一个会话，负载为会话 ID 本身
type EndShare struct {
	SID xid.ID
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *EndShare) UnmarshalJSON(b []byte) error {
	return e.SID.UnmarshalJSON(b)
}

// MarshalJSON implements json.Marshaler.
func (e EndShare) MarshalJSON() ([]byte, error) {
	return e.SID.MarshalJSON()
}

// Execute 关闭该 sid 的会话，本地捕获不受影响
func (e *EndShare) Execute(r *Room) error {
	if session := r.viewers.Get(e.SID); session != nil {
		r.closeSession(session)
	}
	if session := r.hosts.Get(e.SID); session != nil {
		r.closeSession(session)
	}
	r.setState(r.state.RemoveInbound(e.SID))
	return nil
}
