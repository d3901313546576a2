package ws

import (
	"encoding/json"
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// Role 表示本端在一个点对点会话中的角色
type Role string

const (
	// RolePresenter 本端共享屏幕，向观看者发送媒体
	RolePresenter Role = "presenter"
	// RoleViewer 本端观看，接收共享者的媒体
	RoleViewer Role = "viewer"
)

// RemoteTrack 是传输层交付的一条入站媒体轨道
type RemoteTrack interface {
	ID() string
	StreamID() string
	Kind() webrtc.RTPCodecType
	Codec() webrtc.RTPCodecParameters
	ReadRTP() (*rtp.Packet, interceptor.Attributes, error)
}

// Transport 是一个会话底层的点对点传输
// 除 Close 外，所有方法只会在会话自己的工作协程中串行调用
type Transport interface {
	// AddSendOnly 以只发送方向附加本地轨道，codecs 非空时作为该收发器的编解码器偏好
	AddSendOnly(track webrtc.TrackLocal, codecs []webrtc.RTPCodecParameters) error
	// VideoCodecs 返回传输支持的视频编解码器
	VideoCodecs() []webrtc.RTPCodecParameters
	// CreateOffer 创建 offer 并设置为本地描述
	CreateOffer() (webrtc.SessionDescription, error)
	// CreateAnswer 创建 answer 并设置为本地描述
	CreateAnswer() (webrtc.SessionDescription, error)
	SetRemoteDescription(desc webrtc.SessionDescription) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	// Close 可以与其他任何调用并发执行
	Close() error
}

// TransportEvents 是传输层异步通知的回调，可能在任意协程中被调用
type TransportEvents struct {
	OnICECandidate    func(webrtc.ICECandidateInit)
	OnConnectionState func(webrtc.PeerConnectionState)
	OnTrack           func(RemoteTrack)
}

// TransportFactory 为一个会话创建传输
type TransportFactory func(conf webrtc.Configuration, events TransportEvents) (Transport, error)

// TrackSink 消费观看会话收到的轨道，Consume 不能阻塞
type TrackSink interface {
	Consume(sid, peer xid.ID, track RemoteTrack)
}

// PeerSession 表示一个独立的点对点传输协商，以 SID 为唯一键
type PeerSession struct {
	SID  xid.ID
	Role Role
	// Peer 对端用户 ID，仅用于展示
	Peer xid.ID
	// Stream 观看会话的入站媒体流，共享会话为 nil
	Stream *InboundStream

	transport Transport
	onError   func(error)

	mu     sync.Mutex
	ops    []func(Transport) error
	closed bool
	wake   chan struct{}
	done   chan struct{}

	// 以下字段只在工作协程中访问
	remoteSet bool
	pending   []webrtc.ICECandidateInit

	// 以下字段只在房间事件循环中访问
	// 本地描述发出之前产生的本地候选暂存在 held 中
	localSent bool
	held      []webrtc.ICECandidateInit
}

func newPeerSession(sid xid.ID, role Role, peer xid.ID) *PeerSession {
	s := &PeerSession{
		SID:  sid,
		Role: role,
		Peer: peer,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	if role == RoleViewer {
		s.Stream = &InboundStream{ID: sid, PeerID: peer}
	}
	return s
}

// enqueue 将一个协商步骤加入会话的串行队列，会话已关闭时丢弃
func (s *PeerSession) enqueue(op func(Transport) error) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.ops = append(s.ops, op)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// run 是会话的工作协程，按顺序执行队列中的协商步骤
func (s *PeerSession) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if s.closed || len(s.ops) == 0 {
				s.mu.Unlock()
				break
			}
			op := s.ops[0]
			s.ops = s.ops[1:]
			s.mu.Unlock()

			if err := op(s.transport); err != nil && !s.isClosed() && s.onError != nil {
				s.onError(err)
			}
		}
	}
}

func (s *PeerSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// close 关闭会话和底层传输，只有第一次调用返回 true
// 传输在独立协程中关闭，不会阻塞调用者
func (s *PeerSession) close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.ops = nil
	s.mu.Unlock()
	close(s.done)

	if s.transport != nil {
		go func(t Transport) {
			if err := t.Close(); err != nil {
				log.Debug().Err(err).Str("sid", s.SID.String()).Msg("close transport")
			}
		}(s.transport)
	}
	return true
}

// setRemote 应用远端描述，并按到达顺序补充之前缓存的候选
func (s *PeerSession) setRemote(t Transport, desc webrtc.SessionDescription) error {
	if err := t.SetRemoteDescription(desc); err != nil {
		return err
	}
	s.remoteSet = true
	pending := s.pending
	s.pending = nil
	for _, candidate := range pending {
		s.applyCandidate(t, candidate)
	}
	return nil
}

// addCandidate 在远端描述设置之前缓存候选
func (s *PeerSession) addCandidate(t Transport, candidate webrtc.ICECandidateInit) {
	if !s.remoteSet {
		s.pending = append(s.pending, candidate)
		return
	}
	s.applyCandidate(t, candidate)
}

func (s *PeerSession) applyCandidate(t Transport, candidate webrtc.ICECandidateInit) {
	if err := t.AddICECandidate(candidate); err != nil {
		log.Debug().Err(err).Str("sid", s.SID.String()).Str("candidate", candidate.Candidate).Msg("could not add ICE candidate")
	}
}

// Sessions 是以 SID 为键的会话集合，只在房间事件循环中访问
type Sessions struct {
	m map[xid.ID]*PeerSession
}

func newSessions() *Sessions {
	return &Sessions{m: map[xid.ID]*PeerSession{}}
}

// Get 返回 sid 对应的会话，不存在时返回 nil
func (c *Sessions) Get(sid xid.ID) *PeerSession {
	return c.m[sid]
}

// Put 插入会话，返回被替换的旧会话
func (c *Sessions) Put(s *PeerSession) *PeerSession {
	prev := c.m[s.SID]
	c.m[s.SID] = s
	return prev
}

// Remove 仅当 s 仍是 sid 的当前会话时将其移除
func (c *Sessions) Remove(s *PeerSession) bool {
	if c.m[s.SID] != s {
		return false
	}
	delete(c.m, s.SID)
	return true
}

// Clear 清空集合并返回原有的全部会话
func (c *Sessions) Clear() []*PeerSession {
	all := c.All()
	c.m = map[xid.ID]*PeerSession{}
	return all
}

// All 返回全部会话的副本
func (c *Sessions) All() []*PeerSession {
	all := make([]*PeerSession, 0, len(c.m))
	for _, s := range c.m {
		all = append(all, s)
	}
	return all
}

// Len 返回会话数量
func (c *Sessions) Len() int {
	return len(c.m)
}

// InboundStream 累积一个观看会话收到的全部轨道
type InboundStream struct {
	ID     xid.ID
	PeerID xid.ID

	mu     sync.RWMutex
	tracks []RemoteTrack
}

// add 添加轨道，返回是否是第一条
func (s *InboundStream) add(track RemoteTrack) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, track)
	return len(s.tracks) == 1
}

// Tracks 返回当前累积的轨道
func (s *InboundStream) Tracks() []RemoteTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RemoteTrack(nil), s.tracks...)
}

type trackJSON struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// MarshalJSON implements json.Marshaler.
func (s *InboundStream) MarshalJSON() ([]byte, error) {
	tracks := []trackJSON{}
	for _, track := range s.Tracks() {
		tracks = append(tracks, trackJSON{ID: track.ID(), Kind: track.Kind().String()})
	}
	return json.Marshal(struct {
		ID     xid.ID      `json:"id"`
		PeerID xid.ID      `json:"peer_id"`
		Tracks []trackJSON `json:"tracks"`
	}{ID: s.ID, PeerID: s.PeerID, Tracks: tracks})
}
