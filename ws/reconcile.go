package ws

import (
	"strings"

	"github.com/AsterZephyr/screego-client/notify"
)

// Severity 表示房间结束的严重程度
type Severity int

const (
	// Silent 不通知用户
	Silent Severity = iota
	// Informational 正常结束，例如房主解散了房间
	Informational
	// Failure 其余所有原因
	Failure
)

// 服务器使用的关闭原因
const (
	CloseRoomDissolved = "Room Dissolved"
	CloseUserLeft      = "User Left"
	CloseKicked        = "kickedByOwner"
	CloseBanned        = "bannedByOwner"
	CloseBannedFrom    = "bannedFromRoom"
	closeUnknownEvent  = "received unknown event"
)

var closeReasons = map[string]string{
	CloseRoomDissolved: notify.RoomDissolvedByOwner,
	CloseUserLeft:      notify.UserLeft,
	CloseKicked:        notify.KickedByOwner,
	CloseBanned:        notify.BannedByOwner,
	CloseBannedFrom:    notify.BannedByOwner,
}

var errorMessages = map[string]string{
	"another user is already sharing screen":          notify.AlreadySharing,
	"bannedFromRoom":                                  notify.BannedByOwner,
	"you do not have permission to share screen":      notify.NoPermissionToShare,
	"cannot join room, you are already in one":        notify.AlreadyInRoom,
	"only owner can perform this action":              notify.OnlyOwner,
	"targetUserId is required for individual actions": notify.TargetUserIDRequired,
	"invalid user ID":                                 notify.InvalidUserID,
	"user not found":                                  notify.UserNotFound,
	"cannot perform action on yourself":               notify.CannotActOnYourself,
	"you are not in a room":                           notify.NotInRoom,
	"you are not in this room":                        notify.NotInThisRoom,
	"only the room owner can dissolve the room":       notify.OnlyOwner,
	"not connected":                                   notify.NotConnected,
	"permission denied":                               notify.PermissionDenied,
}

// Outcome 描述房间连接结束的方式
type Outcome struct {
	Severity Severity
	// Reason 为原始的关闭原因或错误消息
	Reason string
	// Key 为通知文案的键，为空时直接展示 Reason
	Key string
	// ClearRoomID 为 true 时清除持久化的房间 ID，避免重试同一个房间
	ClearRoomID bool
}

// Notice 返回该结果对应的用户通知，Silent 返回 false
func (o Outcome) Notice() (notify.Notice, bool) {
	switch o.Severity {
	case Informational:
		return notify.Notice{Level: notify.Info, Key: o.Key, Raw: o.Reason}, true
	case Failure:
		return notify.Notice{Level: notify.Error, Key: o.Key, Raw: o.Reason}, true
	default:
		return notify.Notice{}, false
	}
}

// ClassifyClose 对控制通道的关闭原因进行分类
func ClassifyClose(reason string) Outcome {
	if strings.Contains(reason, "does not exist") {
		return Outcome{Severity: Failure, Reason: reason, Key: notify.RoomNotExist, ClearRoomID: true}
	}
	if strings.TrimSpace(reason) == "" {
		return Outcome{Severity: Silent, Reason: reason}
	}
	key := closeReasons[reason]
	if key == notify.RoomDissolvedByOwner {
		return Outcome{Severity: Informational, Reason: reason, Key: key}
	}
	return Outcome{Severity: Failure, Reason: reason, Key: key}
}

// ClassifyError 对服务器发送的 Error 消息进行分类，
// terminal 为 true 时整个房间连接需要结束
func ClassifyError(message string) (o Outcome, terminal bool) {
	switch {
	case strings.Contains(message, "does not exist"):
		return Outcome{Severity: Failure, Reason: message, Key: notify.RoomNotExist, ClearRoomID: true}, true
	case strings.Contains(message, "does already exist"):
		return Outcome{Severity: Failure, Reason: message, Key: notify.RoomAlreadyExists, ClearRoomID: true}, true
	}
	return Outcome{Severity: Failure, Reason: message, Key: errorMessages[message]}, false
}
