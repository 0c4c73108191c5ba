package respond

// MessageListRespond 分页消息响应
// 消息按 (sent_at, uuid) 倒序，最新的在前
// 使用位置:
//   - service/message/service.go: GetMessageList
type MessageListRespond struct {
	Messages []MessageRespond `json:"messages"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Total    int64            `json:"total"`
}
