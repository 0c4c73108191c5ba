package respond

// MessageRespond 消息的统一对外表示
// REST 分页接口与 WebSocket new_message 事件推送同一结构，
// 客户端两条路径拿到的消息可直接合并去重（以 uuid 为键）。
// Uuid/ReplyTo 为雪花 ID 的十进制字符串，避免 JS 丢精度
// 使用位置:
//   - service/message/service.go: SendMessage, GetMessageList
//   - service/chat: new_message 事件载荷
type MessageRespond struct {
	Uuid             string `json:"uuid"`
	ConversationUuid string `json:"conversation_uuid"`
	SendId           string `json:"send_id"`
	SenderNickname   string `json:"sender_nickname"`
	SenderAvatar     string `json:"sender_avatar"`
	Content          string `json:"content"`
	Type             int8   `json:"type"`
	Url              string `json:"url,omitempty"`
	FileName         string `json:"file_name,omitempty"`
	FileSize         string `json:"file_size,omitempty"`
	ReplyTo          string `json:"reply_to,omitempty"`
	Mentions         string `json:"mentions,omitempty"`
	IsEdited         bool   `json:"is_edited"`
	IsRevoked        bool   `json:"is_revoked"`
	Status           int8   `json:"status"`
	SentAt           string `json:"sent_at"`
}
