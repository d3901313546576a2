package ws

import (
	"fmt"

	"github.com/AsterZephyr/screego-client/ice"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// init 注册 hostsession 事件处理器
func init() {
	register("hostsession", func() Event {
		return &HostSession{}
	})
}

// HostSession 通知本端作为主机为一个观看者创建会话
type HostSession struct {
	ID         xid.ID       `json:"id"`
	Peer       xid.ID       `json:"peer"`
	ICEServers []ice.Server `json:"iceServers"`
}

// Execute 在有活动捕获时创建共享会话并发送 offer，没有捕获时忽略
func (e *HostSession) Execute(r *Room) error {
	if r.capture == nil {
		log.Debug().Str("sid", e.ID.String()).Msg("no active capture, ignoring host session")
		return nil
	}

	session, err := r.newSession(e.ID, RolePresenter, e.Peer, e.ICEServers)
	if err != nil {
		return err
	}

	tracks := r.capture.Tracks()
	video := r.capture.Video()
	prefer := r.opts.PreferCodec
	session.enqueue(func(t Transport) error {
		for _, track := range tracks {
			var codecs []webrtc.RTPCodecParameters
			if track == video && prefer != nil {
				codecs = SortCodecs(t.VideoCodecs(), *prefer)
			}
			if err := t.AddSendOnly(track, codecs); err != nil {
				return fmt.Errorf("attach track %s: %w", track.ID(), err)
			}
		}

		offer, err := t.CreateOffer()
		if err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		r.dispatch(&localDescription{session: session, msg: outgoing.HostOffer{SID: session.SID, Value: offer}})
		return nil
	})
	return nil
}
