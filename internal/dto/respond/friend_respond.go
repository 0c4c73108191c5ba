package respond

// FriendRespond 好友列表条目响应
// 视角归一化：alias/starred/muted 为查询方自己那一侧的设置，
// uid/nickname 等为对方的资料
// 使用位置:
//   - service/friend/service.go: ListFriends
type FriendRespond struct {
	FriendshipUuid   string `json:"friendship_uuid"`
	Uid              string `json:"uid"`
	Username         string `json:"username"`
	Nickname         string `json:"nickname"`
	Avatar           string `json:"avatar"`
	Alias            string `json:"alias"`
	Starred          bool   `json:"starred"`
	Muted            bool   `json:"muted"`
	Online           bool   `json:"online"`
	ConversationUuid string `json:"conversation_uuid"`
	LastMessageAt    string `json:"last_message_at"`
	UnreadCount      int64  `json:"unread_count"`
}
