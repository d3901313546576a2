package ws

// init 注册 room 事件处理器
func init() {
	register("room", func() Event {
		return &RoomInfo{}
	})
}

// RoomInfo 是服务器推送的完整房间信息
// 每次推送都整体替换本地的成员列表，不做增量合并
type RoomInfo struct {
	ID    string `json:"id"`
	Users []User `json:"users"`
}

// Execute 替换房间成员
func (e *RoomInfo) Execute(r *Room) error {
	r.setState(r.state.ReplaceMembership(*e))
	return nil
}
