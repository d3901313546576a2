package ws

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// init 注册 hostice 和 clientice 事件处理器
func init() {
	register("hostice", func() Event {
		return &HostICE{}
	})
	register("clientice", func() Event {
		return &ClientICE{}
	})
}

// HostICE 表示主机发现的 ICE 候选，交给本端的观看会话
type HostICE struct {
	SID   xid.ID                  `json:"sid"`
	Value webrtc.ICECandidateInit `json:"value"`
}

// Execute 将候选加入观看会话
func (e *HostICE) Execute(r *Room) error {
	addRemoteCandidate(r.viewers.Get(e.SID), e.SID, e.Value)
	return nil
}

// ClientICE 表示观看者发现的 ICE 候选，交给本端的共享会话
type ClientICE struct {
	SID   xid.ID                  `json:"sid"`
	Value webrtc.ICECandidateInit `json:"value"`
}

// Execute 将候选加入共享会话
func (e *ClientICE) Execute(r *Room) error {
	addRemoteCandidate(r.hosts.Get(e.SID), e.SID, e.Value)
	return nil
}

func addRemoteCandidate(session *PeerSession, sid xid.ID, candidate webrtc.ICECandidateInit) {
	if session == nil {
		log.Debug().Str("sid", sid.String()).Msg("unknown session")
		return
	}
	iceCandidatesTotal.WithLabelValues("in").Inc()
	session.enqueue(func(t Transport) error {
		session.addCandidate(t, candidate)
		return nil
	})
}
