package ws

import (
	"github.com/rs/xid"
)

// User 表示协调服务器推送的一个房间成员
type User struct {
	ID        xid.ID `json:"id"`
	Name      string `json:"name"`
	Streaming bool   `json:"streaming"`
	You       bool   `json:"you"`
	Owner     bool   `json:"owner"`
	CanShare  bool   `json:"canShare"`
}

// State 是房间状态的快照
// 状态只通过下面的方法整体替换，每个方法都返回新的快照而不修改原值
type State struct {
	// Connected 为 false 时其余字段均为零值
	Connected bool   `json:"connected"`
	ID        string `json:"id"`
	Users     []User `json:"users"`
	// Presenting 表示本地已经持有一个捕获（本地意图），
	// 服务器确认的状态见 Local().Streaming
	Presenting bool             `json:"presenting"`
	Inbound    []*InboundStream `json:"clientStreams"`
}

// ReplaceMembership 用一次 room 推送整体替换成员列表和房间 ID
func (s State) ReplaceMembership(info RoomInfo) State {
	s.Connected = true
	s.ID = info.ID
	s.Users = append([]User{}, info.Users...)
	return s
}

// WithPresenting 设置本地共享意图
func (s State) WithPresenting(presenting bool) State {
	s.Presenting = presenting
	return s
}

// AddInbound 发布一个入站流，同一 ID 的旧条目会被替换
func (s State) AddInbound(stream *InboundStream) State {
	s = s.RemoveInbound(stream.ID)
	s.Inbound = append(s.Inbound, stream)
	return s
}

// RemoveInbound 移除 sid 对应的入站流
func (s State) RemoveInbound(sid xid.ID) State {
	filtered := make([]*InboundStream, 0, len(s.Inbound))
	for _, stream := range s.Inbound {
		if stream.ID != sid {
			filtered = append(filtered, stream)
		}
	}
	s.Inbound = filtered
	return s
}

// FindInbound 返回 sid 对应的入站流
func (s State) FindInbound(sid xid.ID) (*InboundStream, bool) {
	for _, stream := range s.Inbound {
		if stream.ID == sid {
			return stream, true
		}
	}
	return nil, false
}

// Local 返回本地用户
func (s State) Local() (User, bool) {
	for _, user := range s.Users {
		if user.You {
			return user, true
		}
	}
	return User{}, false
}

// Owner 返回房主
func (s State) Owner() (User, bool) {
	for _, user := range s.Users {
		if user.Owner {
			return user, true
		}
	}
	return User{}, false
}
