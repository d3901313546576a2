package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ping 向 websocket 连接发送 ping 消息
var ping = func(conn *websocket.Conn) error {
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// writeJSON 向 websocket 连接写入 JSON 消息
var writeJSON = func(conn *websocket.Conn, v interface{}) error {
	return conn.WriteJSON(v)
}

const (
	// writeWait 定义了写操作的超时时间
	writeWait = 2 * time.Second
	// handshakeTimeout 定义了 websocket 握手的超时时间
	handshakeTimeout = 10 * time.Second
)

// controlChannel 是房间使用的控制通道
type controlChannel interface {
	Send(msg outgoing.Message)
	Close(code int, reason string)
}

// Client 表示到协调服务器的唯一一条控制连接
type Client struct {
	conn  *websocket.Conn
	url   string
	write chan outgoing.Message
	open  atomic.Bool
	once  sync.Once
	done  chan struct{}
}

// dial 建立控制连接
func dial(ctx context.Context, url string, header http.Header, jar http.CookieJar) (*Client, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
		Jar:              jar,
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	client := &Client{
		conn:  conn,
		url:   url,
		write: make(chan outgoing.Message, 16),
		done:  make(chan struct{}),
	}
	client.open.Store(true)
	client.debug().Msg("WebSocket Connected")
	return client, nil
}

// Send 发送一条控制消息，连接未打开时静默丢弃
func (c *Client) Send(msg outgoing.Message) {
	if !c.open.Load() {
		c.debug().Str("event", msg.Type()).Msg("WebSocket Drop")
		return
	}
	select {
	case c.write <- msg:
	case <-c.done:
	case <-time.After(writeWait):
		log.Warn().Str("event", msg.Type()).Interface("payload", msg).Msg("Write loop didn't accept the message.")
	}
}

// Close 关闭连接，只有第一次调用生效
func (c *Client) Close(code int, reason string) {
	c.once.Do(func() {
		c.open.Store(false)
		close(c.done)
		message := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
		_ = c.conn.Close()
		c.debug().Int("code", code).Str("reason", reason).Msg("WebSocket Close")
	})
}

// readFirst 读取连接上的第一条消息
func (c *Client) readFirst(ctx context.Context, wait time.Duration) (Event, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()
	return c.readOne()
}

func (c *Client) readOne() (Event, error) {
	t, m, err := c.conn.NextReader()
	if err != nil {
		return nil, err
	}
	if t == websocket.BinaryMessage {
		return nil, &IncomingError{Type: "binary", Err: ErrUnknownType}
	}
	incoming, err := ReadTypedIncoming(m)
	if err != nil {
		return nil, err
	}
	controlMessagesTotal.WithLabelValues("in").Inc()
	c.debug().Str("event", fmt.Sprintf("%T", incoming)).Interface("payload", incoming).Msg("WebSocket Receive")
	return incoming, nil
}

// startReading 持续读取消息并交给 dispatch，
// 无法识别的消息作为非致命诊断继续，连接结束时派发 Disconnected
func (c *Client) startReading(pongWait time.Duration, dispatch func(Event) bool) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		incoming, err := c.readOne()
		var incomingErr *IncomingError
		if errors.As(err, &incomingErr) {
			c.debug().Err(err).Msg("WebSocket Ignore")
			dispatch(&Malformed{Type: incomingErr.Type, Err: incomingErr.Err})
			continue
		}
		if err != nil {
			c.open.Store(false)
			c.printWebSocketError("read", err)
			dispatch(disconnectedFrom(err))
			return
		}
		if !dispatch(incoming) {
			return
		}
	}
}

// disconnectedFrom 将读取错误转换为 Disconnected 事件
func disconnectedFrom(err error) *Disconnected {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return &Disconnected{Code: closeErr.Code, Reason: closeErr.Text}
	}
	return &Disconnected{Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
}

// startWriteHandler 处理发送队列和定期 ping
func (c *Client) startWriteHandler(pingPeriod time.Duration) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()
	defer func() {
		c.debug().Msg("WebSocket Done")
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.write:
			typed, err := ToTypedOutgoing(message)
			if err != nil {
				c.debug().Err(err).Str("event", message.Type()).Msg("could not get typed message, dropping it.")
				continue
			}
			c.debug().Str("event", typed.Type).RawJSON("payload", typed.Payload).Msg("WebSocket Send")

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := writeJSON(c.conn, typed); err != nil {
				c.printWebSocketError("write", err)
				continue
			}
			controlMessagesTotal.WithLabelValues("out").Inc()
		case <-pingTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ping(c.conn); err != nil {
				c.printWebSocketError("ping", err)
			}
		}
	}
}

// debug 返回一个带有连接信息的日志事件
func (c *Client) debug() *zerolog.Event {
	return log.Debug().Str("url", c.url)
}

// printWebSocketError 打印 websocket 错误，忽略正常关闭
func (c *Client) printWebSocketError(typex string, err error) {
	if strings.Contains(err.Error(), "use of closed network connection") {
		return
	}
	var closeError *websocket.CloseError
	if errors.As(err, &closeError) && (closeError.Code == websocket.CloseNormalClosure || closeError.Code == websocket.CloseGoingAway) {
		return
	}
	c.debug().Str("type", typex).Err(err).Msg("WebSocket Error")
}
