package respond

// NotificationRespond 好友通知条目响应
// 使用位置:
//   - service/friend/service.go: ListNotifications
type NotificationRespond struct {
	Uuid           string `json:"uuid"`
	FriendshipUuid string `json:"friendship_uuid"`
	SenderId       string `json:"sender_id"`
	SenderNickname string `json:"sender_nickname"`
	Kind           int8   `json:"kind"`
	Message        string `json:"message"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}
