package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 通知的键
const (
	RoomDissolved        = "roomDissolved"
	RoomDissolvedByOwner = "roomDissolvedByOwner"
	RoomNotExist         = "roomNotExist"
	RoomAlreadyExists    = "roomAlreadyExists"
	UserLeft             = "userLeft"
	KickedByOwner        = "kickedByOwner"
	BannedByOwner        = "bannedByOwner"
	UnknownEvent         = "unknownEvent"
	MalformedMessage     = "malformedMessage"
	AlreadySharing       = "alreadySharing"
	NoPermissionToShare  = "noPermissionToShare"
	AlreadyInRoom        = "alreadyInRoom"
	OnlyOwner            = "onlyOwnerCanDissolve"
	TargetUserIDRequired = "targetUserIdRequired"
	InvalidUserID        = "invalidUserId"
	UserNotFound         = "userNotFound"
	CannotActOnYourself  = "cannotActionOnYourself"
	NotInRoom            = "notInRoom"
	NotInThisRoom        = "notInThisRoom"
	NotConnected         = "notConnected"
	PermissionDenied     = "permissionDenied"
	CaptureUnsupported   = "couldNotStartPresentationBrowser"
	CaptureFailed        = "couldNotStartPresentationError"
	ConnectionFailed     = "connectionFailed"
	RoomListRefreshed    = "roomListRefreshed"
)

var (
	supported = []language.Tag{language.English, language.Chinese}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[string][2]string{
	RoomDissolved:        {"The room was dissolved", "房间已解散"},
	RoomDissolvedByOwner: {"The room was dissolved by its owner", "房间已被房主解散"},
	RoomNotExist:         {"The room does not exist", "房间不存在"},
	RoomAlreadyExists:    {"The room already exists", "房间已存在"},
	UserLeft:             {"You left the room", "你已离开房间"},
	KickedByOwner:        {"You were removed from the room by its owner", "你已被房主移出房间"},
	BannedByOwner:        {"You were banned from the room by its owner", "你已被房主禁止进入房间"},
	UnknownEvent:         {"Unknown event: %s", "未知事件：%s"},
	MalformedMessage:     {"Malformed message: %s", "无法解析的消息：%s"},
	AlreadySharing:       {"Another user is already sharing their screen", "已有其他用户在共享屏幕"},
	NoPermissionToShare:  {"You do not have permission to share your screen", "你没有共享屏幕的权限"},
	AlreadyInRoom:        {"You are already in a room", "你已经在一个房间中"},
	OnlyOwner:            {"Only the room owner can do this", "只有房主可以执行此操作"},
	TargetUserIDRequired: {"A target user is required", "需要指定目标用户"},
	InvalidUserID:        {"Invalid user id", "无效的用户 ID"},
	UserNotFound:         {"User not found", "用户不存在"},
	CannotActOnYourself:  {"You cannot do this to yourself", "不能对自己执行此操作"},
	NotInRoom:            {"You are not in a room", "你不在房间中"},
	NotInThisRoom:        {"You are not in this room", "你不在这个房间中"},
	NotConnected:         {"Not connected", "未连接"},
	PermissionDenied:     {"Permission denied", "权限不足"},
	CaptureUnsupported:   {"Could not start presentation: screen capture is not supported (%s)", "无法开始演示：不支持屏幕捕获（%s）"},
	CaptureFailed:        {"Could not start presentation. %s", "无法开始演示。%s"},
	ConnectionFailed:     {"Could not connect: %s", "无法连接：%s"},
	RoomListRefreshed:    {"Room list refreshed", "房间列表已刷新"},
}

func init() {
	for key, texts := range catalog {
		for i, tag := range supported {
			_ = message.SetString(tag, key, texts[i])
		}
	}
}
