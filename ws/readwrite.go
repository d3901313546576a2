package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AsterZephyr/screego-client/ws/outgoing"
)

// ErrUnknownType 表示收到了未注册类型的消息
var ErrUnknownType = errors.New("unknown message type")

// Typed 表示一个带类型的 websocket 消息
type Typed struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ToTypedOutgoing 将 outgoing 消息转换为带类型的 websocket 消息
func ToTypedOutgoing(outgoing outgoing.Message) (Typed, error) {
	payload, err := json.Marshal(outgoing)
	if err != nil {
		return Typed{}, err
	}
	return Typed{
		Type:    outgoing.Type(),
		Payload: payload,
	}, nil
}

// IncomingError 表示一条无法处理的消息，Type 为消息中的类型字段
type IncomingError struct {
	Type string
	Err  error
}

func (e *IncomingError) Error() string {
	return fmt.Sprintf("incoming %q: %s", e.Type, e.Err)
}

func (e *IncomingError) Unwrap() error {
	return e.Err
}

// ReadTypedIncoming 从读取器中解析带类型的消息并创建对应的事件
// 未注册的类型返回包装了 ErrUnknownType 的 IncomingError
func ReadTypedIncoming(r io.Reader) (Event, error) {
	typed := Typed{}
	if err := json.NewDecoder(r).Decode(&typed); err != nil {
		return nil, &IncomingError{Err: err}
	}

	create, ok := provider[typed.Type]
	if !ok {
		return nil, &IncomingError{Type: typed.Type, Err: ErrUnknownType}
	}

	payload := create()
	if len(typed.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(typed.Payload, payload); err != nil {
		return nil, &IncomingError{Type: typed.Type, Err: err}
	}
	return payload, nil
}

// provider 存储所有已注册的事件类型和对应的创建函数
var provider = map[string]func() Event{}

// register 注册一个事件类型，在各事件文件的 init 中调用
func register(t string, incoming func() Event) {
	provider[t] = incoming
}
