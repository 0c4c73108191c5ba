package respond

// ConversationRespond 会话列表条目响应
// 私聊会话的 name/avatar 取对方资料，peer_uid 为对方 UID；
// unread_count 由已读水位实时推导
// 使用位置:
//   - service/conversation/service.go: ListConversations, CreateConversation
type ConversationRespond struct {
	Uuid          string `json:"uuid"`
	Type          int8   `json:"type"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	PeerUid       string `json:"peer_uid,omitempty"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
	UnreadCount   int64  `json:"unread_count"`
	IsMuted       bool   `json:"is_muted"`
	IsPinned      bool   `json:"is_pinned"`
}
