package outgoing

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
)

// Message 表示发送给协调服务器的消息
type Message interface {
	// Type 返回消息类型，对应 websocket 帧中的 type 字段
	Type() string
}

// RoomMode 定义了房间的连接模式
type RoomMode string

const (
	// RoomModeLocal 仅使用本地连接
	RoomModeLocal RoomMode = "local"
	// RoomModeSTUN 使用 STUN 服务器
	RoomModeSTUN RoomMode = "stun"
	// RoomModeTURN 使用 TURN 服务器中继
	RoomModeTURN RoomMode = "turn"
)

// Create 创建房间，房间已存在且 JoinIfExist 为 true 时直接加入
type Create struct {
	Mode              RoomMode `json:"mode"`
	ID                string   `json:"id,omitempty"`
	JoinIfExist       bool     `json:"joinIfExist"`
	CloseOnOwnerLeave bool     `json:"closeOnOwnerLeave"`
	UserName          string   `json:"username,omitempty"`
}

// Type implements Message.
func (Create) Type() string { return "create" }

// Join 加入一个已存在的房间
type Join struct {
	ID       string `json:"id"`
	UserName string `json:"username,omitempty"`
}

// Type implements Message.
func (Join) Type() string { return "join" }

// Name 修改自己的用户名
type Name struct {
	UserName string `json:"username"`
}

// Type implements Message.
func (Name) Type() string { return "name" }

// StartShare 通知服务器开始共享屏幕
type StartShare struct{}

// Type implements Message.
func (StartShare) Type() string { return "share" }

// StopShare 通知服务器停止共享屏幕
type StopShare struct{}

// Type implements Message.
func (StopShare) Type() string { return "stopshare" }

// Dissolve 解散房间，仅房主可用
type Dissolve struct{}

// Type implements Message.
func (Dissolve) Type() string { return "dissolve" }

// Owner actions.
const (
	ActionStopShare       = "stop_share"
	ActionToggleShare     = "toggle_share_permission"
	ActionKick            = "kick"
	ActionBan             = "ban"
	ActionEnableAllShare  = "enable_all"
	ActionDisableAllShare = "disable_all"
)

// OwnerAction 房主对成员执行的管理操作
type OwnerAction struct {
	Action       string `json:"action"`
	TargetUserID string `json:"targetUserId,omitempty"`
}

// Type implements Message.
func (OwnerAction) Type() string { return "owneraction" }

// HostOffer 主机（共享者）发送的 SDP offer
type HostOffer struct {
	SID   xid.ID                    `json:"sid"`
	Value webrtc.SessionDescription `json:"value"`
}

// Type implements Message.
func (HostOffer) Type() string { return "hostoffer" }

// HostICE 主机发现的本地 ICE 候选
type HostICE struct {
	SID   xid.ID                  `json:"sid"`
	Value webrtc.ICECandidateInit `json:"value"`
}

// Type implements Message.
func (HostICE) Type() string { return "hostice" }

// ClientAnswer 客户端（观看者）对 offer 的 SDP answer
type ClientAnswer struct {
	SID   xid.ID                    `json:"sid"`
	Value webrtc.SessionDescription `json:"value"`
}

// Type implements Message.
func (ClientAnswer) Type() string { return "clientanswer" }

// ClientICE 客户端发现的本地 ICE 候选
type ClientICE struct {
	SID   xid.ID                  `json:"sid"`
	Value webrtc.ICECandidateInit `json:"value"`
}

// Type implements Message.
func (ClientICE) Type() string { return "clientice" }
