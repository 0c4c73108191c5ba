package request

// RespondFriendRequest 处理好友申请请求
// 使用位置:
//   - handler/friend_handler.go: RespondFriendRequestHandler
type RespondFriendRequest struct {
	// Action accept 通过，decline 拒绝
	Action string `json:"action" binding:"required,oneof=accept decline"`
	// Reason 拒绝理由（仅拒绝时有意义）
	Reason string `json:"reason" binding:"max=100"`
}

// IsAccept 是否为通过操作
func (r RespondFriendRequest) IsAccept() bool {
	return r.Action == "accept"
}
