package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/AsterZephyr/screego-client/capture"
	"github.com/AsterZephyr/screego-client/ice"
	"github.com/AsterZephyr/screego-client/notify"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotRoom 表示连接后的第一条消息不是房间信息
	ErrNotRoom = errors.New("first message was not a room")
	// ErrClosed 表示房间已经结束
	ErrClosed = errors.New("room closed")
)

// ConnectionError 表示连接房间失败
type ConnectionError struct {
	Reason  string
	Outcome Outcome
	Err     error
}

func (e *ConnectionError) Error() string {
	return "connect: " + e.Reason
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RoomIDStore 持久化最近一次进入的房间 ID
type RoomIDStore interface {
	Get() string
	Set(id string)
	Clear()
}

type noRoomIDs struct{}

func (noRoomIDs) Get() string { return "" }
func (noRoomIDs) Set(string)  {}
func (noRoomIDs) Clear()      {}

// Options 配置一次房间连接
type Options struct {
	// URL 为控制通道地址，例如 ws://localhost:5050/stream
	URL    string
	Header http.Header
	Jar    http.CookieJar

	PingPeriod time.Duration
	PongWait   time.Duration
	// ForceRelay 强制所有会话只使用中继候选
	ForceRelay bool

	// NewTransport 为每个会话创建传输，必须设置
	NewTransport TransportFactory
	// Source 为 nil 时不支持共享
	Source  capture.Source
	Quality capture.Quality
	// PreferCodec 为 nil 时保留传输默认的编解码器顺序
	PreferCodec *webrtc.RTPCodecCapability

	Notifier notify.Notifier
	RoomIDs  RoomIDStore
	Sink     TrackSink
	// OnState 在事件循环中以每个新快照调用，不能阻塞
	OnState func(State)
}

func (o *Options) defaults() {
	if o.PingPeriod == 0 {
		o.PingPeriod = 5 * time.Second
	}
	if o.PongWait == 0 {
		o.PongWait = 20 * time.Second
	}
	if o.Notifier == nil {
		o.Notifier = notify.Func(func(notify.Notice) {})
	}
	if o.RoomIDs == nil {
		o.RoomIDs = noRoomIDs{}
	}
}

// Room 表示当前连接的房间
// 所有状态只在 start 启动的事件循环中修改，控制消息、传输回调和本地操作都经由 Incoming 串行执行
type Room struct {
	Incoming chan Event

	conn controlChannel
	opts Options

	state   State
	hosts   *Sessions
	viewers *Sessions
	capture *capture.Capture
	closed  bool
	outcome Outcome

	snapshot atomic.Pointer[State]
	done     chan struct{}
}

func newRoom(conn controlChannel, opts Options) *Room {
	opts.defaults()
	r := &Room{
		Incoming: make(chan Event, 64),
		conn:     conn,
		opts:     opts,
		hosts:    newSessions(),
		viewers:  newSessions(),
		done:     make(chan struct{}),
	}
	r.snapshot.Store(&State{})
	return r
}

// Connect 打开控制通道，发送 intent 作为第一条消息，并等待第一条回复
// 第一条回复必须是房间信息，否则连接以 ConnectionError 失败，且不会产生 Room
func Connect(ctx context.Context, opts Options, intent outgoing.Message) (*Room, error) {
	if opts.NewTransport == nil {
		return nil, errors.New("missing transport factory")
	}
	opts.defaults()

	client, err := dial(ctx, opts.URL, opts.Header, opts.Jar)
	if err != nil {
		opts.Notifier.Notify(notify.Notice{Level: notify.Error, Key: notify.ConnectionFailed, Args: []interface{}{err.Error()}})
		return nil, &ConnectionError{Reason: err.Error(), Err: err}
	}
	go client.startWriteHandler(opts.PingPeriod)
	client.Send(intent)

	first, err := client.readFirst(ctx, opts.PongWait)
	var closeErr *websocket.CloseError
	var incomingErr *IncomingError
	switch {
	case errors.As(err, &closeErr):
		outcome := ClassifyClose(closeErr.Text)
		reconcile(opts, outcome)
		client.Close(websocket.CloseNormalClosure, "")
		return nil, &ConnectionError{Reason: closeErr.Text, Outcome: outcome, Err: err}
	case errors.As(err, &incomingErr):
		return nil, rejectFirst(opts, client, incomingErr.Type)
	case err != nil:
		client.Close(websocket.CloseNormalClosure, "")
		opts.Notifier.Notify(notify.Notice{Level: notify.Error, Key: notify.ConnectionFailed, Args: []interface{}{err.Error()}})
		return nil, &ConnectionError{Reason: err.Error(), Err: err}
	}

	switch msg := first.(type) {
	case *RoomInfo:
		r := newRoom(client, opts)
		r.setState(r.state.ReplaceMembership(*msg))
		opts.RoomIDs.Set(msg.ID)
		go client.startReading(opts.PongWait, r.dispatch)
		go r.start()
		return r, nil
	case *Error:
		outcome, _ := ClassifyError(msg.Message)
		reconcile(opts, outcome)
		client.Close(websocket.CloseNormalClosure, "")
		return nil, &ConnectionError{Reason: msg.Message, Outcome: outcome}
	default:
		return nil, rejectFirst(opts, client, fmt.Sprintf("%T", first))
	}
}

func rejectFirst(opts Options, client *Client, typ string) error {
	opts.Notifier.Notify(notify.Notice{Level: notify.Error, Key: notify.UnknownEvent, Args: []interface{}{typ}})
	client.Close(websocket.CloseNormalClosure, closeUnknownEvent)
	return &ConnectionError{Reason: closeUnknownEvent, Err: ErrNotRoom}
}

// reconcile 执行结果的副作用：清除房间 ID 并通知用户
func reconcile(opts Options, o Outcome) {
	if o.ClearRoomID {
		opts.RoomIDs.Clear()
	}
	if notice, ok := o.Notice(); ok {
		opts.Notifier.Notify(notice)
	}
}

// start 是房间的事件循环，房间结束后关闭 done
func (r *Room) start() {
	defer close(r.done)
	for !r.closed {
		r.execute(<-r.Incoming)
	}
}

func (r *Room) execute(e Event) {
	if err := e.Execute(r); err != nil {
		log.Warn().Err(err).Str("event", fmt.Sprintf("%T", e)).Msg("event failed")
	}
}

// dispatch 将事件放入事件循环，房间结束后返回 false
func (r *Room) dispatch(e Event) bool {
	select {
	case r.Incoming <- e:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) setState(s State) {
	r.state = s
	r.snapshot.Store(&s)
	if r.opts.OnState != nil {
		r.opts.OnState(s)
	}
}

func (r *Room) notify(n notify.Notice) {
	r.opts.Notifier.Notify(n)
}

func (r *Room) send(msg outgoing.Message) {
	r.conn.Send(msg)
}

// sendCandidate 按会话角色发送本地候选
func (r *Room) sendCandidate(s *PeerSession, candidate webrtc.ICECandidateInit) {
	iceCandidatesTotal.WithLabelValues("out").Inc()
	if s.Role == RolePresenter {
		r.send(outgoing.HostICE{SID: s.SID, Value: candidate})
	} else {
		r.send(outgoing.ClientICE{SID: s.SID, Value: candidate})
	}
}

func (r *Room) sessions(role Role) *Sessions {
	if role == RolePresenter {
		return r.hosts
	}
	return r.viewers
}

// isCurrent 判断 s 是否仍是其 sid 的当前会话
func (r *Room) isCurrent(s *PeerSession) bool {
	return r.sessions(s.Role).Get(s.SID) == s
}

// newSession 为 sid 创建会话和传输，并启动会话的工作协程
// 同一 sid 已有的会话会先被关闭
func (r *Room) newSession(sid xid.ID, role Role, peer xid.ID, servers []ice.Server) (*PeerSession, error) {
	if prev := r.sessions(role).Get(sid); prev != nil {
		log.Debug().Str("sid", sid.String()).Msg("replacing session")
		r.closeSession(prev)
	}

	conf := ice.Configuration(servers, r.opts.ForceRelay)
	if r.opts.ForceRelay && !ice.HasRelay(conf) {
		log.Warn().Str("sid", sid.String()).Msg("relay forced but no TURN server was issued, session cannot connect")
	}

	s := newPeerSession(sid, role, peer)
	t, err := r.opts.NewTransport(conf, TransportEvents{
		OnICECandidate: func(c webrtc.ICECandidateInit) {
			r.dispatch(&localCandidate{session: s, candidate: c})
		},
		OnConnectionState: func(state webrtc.PeerConnectionState) {
			r.dispatch(&connectionState{session: s, state: state})
		},
		OnTrack: func(track RemoteTrack) {
			r.dispatch(&remoteTrack{session: s, track: track})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create transport for %s: %w", sid, err)
	}
	s.transport = t
	s.onError = func(err error) {
		r.dispatch(&sessionFailed{session: s, err: err})
	}

	r.sessions(role).Put(s)
	sessionCreatedTotal.WithLabelValues(string(role)).Inc()
	go s.run()
	log.Debug().Str("sid", sid.String()).Str("role", string(role)).Str("peer", peer.String()).Msg("session created")
	return s, nil
}

// closeSession 关闭会话并移除，观看会话同时从入站流中移除
func (r *Room) closeSession(s *PeerSession) {
	r.sessions(s.Role).Remove(s)
	if s.close() {
		sessionClosedTotal.WithLabelValues(string(s.Role)).Inc()
	}
	if s.Role == RoleViewer && r.viewers.Get(s.SID) == nil {
		r.setState(r.state.RemoveInbound(s.SID))
	}
}

// stopCapture 关闭全部共享会话、释放捕获并通知服务器，没有捕获时什么都不做
func (r *Room) stopCapture() {
	if r.capture == nil {
		return
	}
	for _, s := range r.hosts.All() {
		r.closeSession(s)
	}
	r.capture.Stop()
	r.capture = nil
	r.setState(r.state.WithPresenting(false))
	r.send(outgoing.StopShare{})
}

// teardown 结束房间：关闭全部会话、释放捕获、清空状态并按结果通知用户
func (r *Room) teardown(o Outcome) {
	if r.closed {
		return
	}
	r.closed = true
	r.outcome = o

	for _, s := range r.viewers.Clear() {
		r.closeSession(s)
	}
	r.stopCapture()
	for _, s := range r.hosts.Clear() {
		r.closeSession(s)
	}
	r.setState(State{})
	reconcile(r.opts, o)
	r.conn.Close(websocket.CloseNormalClosure, "")
	log.Debug().Str("reason", o.Reason).Msg("room closed")
}

// Share 获取一个捕获并开始共享
func (r *Room) Share(ctx context.Context) error {
	if r.opts.Source == nil {
		r.opts.Notifier.Notify(notify.Notice{Level: notify.Error, Key: notify.CaptureUnsupported, Args: []interface{}{capture.ErrUnsupported.Error()}})
		return capture.ErrUnsupported
	}
	if r.Snapshot().Presenting {
		return capture.ErrActive
	}

	c, err := r.opts.Source.Start(ctx, r.opts.Quality)
	if err != nil {
		key := notify.CaptureFailed
		if errors.Is(err, capture.ErrUnsupported) {
			key = notify.CaptureUnsupported
		}
		r.opts.Notifier.Notify(notify.Notice{Level: notify.Error, Key: key, Args: []interface{}{err.Error()}})
		return err
	}

	started := &shareStarted{capture: c, result: make(chan error, 1)}
	if !r.dispatch(started) {
		c.Stop()
		return ErrClosed
	}
	select {
	case err := <-started.result:
		return err
	case <-r.done:
		select {
		case err := <-started.result:
			return err
		default:
			c.Stop()
			return ErrClosed
		}
	}
}

// StopShare 停止共享，没有共享时什么都不做
func (r *Room) StopShare() {
	r.dispatch(&stopShare{})
}

// SetName 请求修改本地用户名，以服务器下一次推送为准
func (r *Room) SetName(name string) {
	r.send(outgoing.Name{UserName: name})
}

// OwnerAction 发送房主管理操作，本地不做任何预先修改
func (r *Room) OwnerAction(action, targetUserID string) {
	r.send(outgoing.OwnerAction{Action: action, TargetUserID: targetUserID})
}

// Dissolve 请求解散房间，房间在服务器确认后结束
func (r *Room) Dissolve() {
	r.send(outgoing.Dissolve{})
}

// Exit 离开房间并等待事件循环结束
func (r *Room) Exit() {
	r.dispatch(&exit{})
	<-r.done
}

// Snapshot 返回最近发布的状态快照，可以在任意协程中调用
func (r *Room) Snapshot() State {
	return *r.snapshot.Load()
}

// Done 在房间结束后关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Outcome 返回房间结束的结果，房间未结束时返回 false
func (r *Room) Outcome() (Outcome, bool) {
	select {
	case <-r.done:
		return r.outcome, true
	default:
		return Outcome{}, false
	}
}
