package request

// SendFriendRequest 发送好友申请请求
// 使用位置:
//   - handler/friend_handler.go: SendFriendRequestHandler
type SendFriendRequest struct {
	// AddresseeId 被申请人 UID
	AddresseeId string `json:"addressee_id" binding:"required"`
	// Message 申请附言
	Message string `json:"message" binding:"max=100"`
}
