package request

// MarkNotificationsReadRequest 标记好友通知已读请求
// Uuids 为空表示标记全部未读通知
// 使用位置:
//   - handler/friend_handler.go: MarkNotificationsReadHandler
type MarkNotificationsReadRequest struct {
	Uuids []string `json:"uuids"`
}
