package ws

import (
	"github.com/AsterZephyr/screego-client/capture"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// 以下事件由本地操作和传输层回调产生，与控制通道消息进入同一个事件循环

// shareStarted 表示一个新获取的捕获等待成为房间的当前捕获
type shareStarted struct {
	capture *capture.Capture
	result  chan error
}

func (e *shareStarted) Execute(r *Room) error {
	if r.capture != nil {
		e.capture.Stop()
		e.result <- capture.ErrActive
		return nil
	}

	r.capture = e.capture
	r.setState(r.state.WithPresenting(true))
	capturesStartedTotal.Inc()

	c := e.capture
	go func() {
		select {
		case <-c.Ended():
			r.dispatch(&captureEnded{capture: c})
		case <-c.Stopped():
		}
	}()

	r.send(outgoing.StartShare{})
	e.result <- nil
	return nil
}

// captureEnded 表示主视频轨道被外部结束
type captureEnded struct {
	capture *capture.Capture
}

func (e *captureEnded) Execute(r *Room) error {
	if r.capture != e.capture {
		return nil
	}
	log.Debug().Msg("capture ended externally")
	r.stopCapture()
	return nil
}

// stopShare 是用户主动停止共享
type stopShare struct{}

func (e *stopShare) Execute(r *Room) error {
	r.stopCapture()
	return nil
}

// exit 是用户主动离开房间
type exit struct{}

func (e *exit) Execute(r *Room) error {
	r.teardown(Outcome{Severity: Silent, ClearRoomID: true})
	return nil
}

// localDescription 表示会话的 offer 或 answer 已经创建，等待经由控制通道发出
type localDescription struct {
	session *PeerSession
	msg     outgoing.Message
}

// Execute 发送描述，然后按产生顺序发送之前暂存的本地候选
func (e *localDescription) Execute(r *Room) error {
	if !r.isCurrent(e.session) {
		return nil
	}
	r.send(e.msg)
	e.session.localSent = true
	held := e.session.held
	e.session.held = nil
	for _, candidate := range held {
		r.sendCandidate(e.session, candidate)
	}
	return nil
}

// localCandidate 表示传输发现了一个本地 ICE 候选
// 候选不会早于所属会话的 offer 或 answer 发出
type localCandidate struct {
	session   *PeerSession
	candidate webrtc.ICECandidateInit
}

func (e *localCandidate) Execute(r *Room) error {
	if !r.isCurrent(e.session) {
		return nil
	}
	if !e.session.localSent {
		e.session.held = append(e.session.held, e.candidate)
		return nil
	}
	r.sendCandidate(e.session, e.candidate)
	return nil
}

// connectionState 表示传输的连接状态发生了变化
type connectionState struct {
	session *PeerSession
	state   webrtc.PeerConnectionState
}

func (e *connectionState) Execute(r *Room) error {
	log.Debug().Str("sid", e.session.SID.String()).Str("role", string(e.session.Role)).Str("state", e.state.String()).Msg("connection state")
	switch e.state {
	case webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateFailed:
		if r.isCurrent(e.session) {
			r.closeSession(e.session)
		}
	}
	return nil
}

// remoteTrack 表示观看会话收到了一条入站轨道
type remoteTrack struct {
	session *PeerSession
	track   RemoteTrack
}

func (e *remoteTrack) Execute(r *Room) error {
	if e.session.Role != RoleViewer || !r.isCurrent(e.session) {
		return nil
	}
	if e.session.Stream.add(e.track) {
		r.setState(r.state.AddInbound(e.session.Stream))
	}
	if r.opts.Sink != nil {
		r.opts.Sink.Consume(e.session.SID, e.session.Peer, e.track)
	}
	return nil
}

// sessionFailed 表示会话的某个协商步骤失败
type sessionFailed struct {
	session *PeerSession
	err     error
}

func (e *sessionFailed) Execute(r *Room) error {
	log.Warn().Err(e.err).Str("sid", e.session.SID.String()).Str("role", string(e.session.Role)).Msg("negotiation failed")
	if r.isCurrent(e.session) {
		r.closeSession(e.session)
	}
	return nil
}
