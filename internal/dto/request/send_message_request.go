package request

// SendMessageRequest 发送消息请求
// REST 与 WebSocket send_message 事件共用
// 使用位置:
//   - handler/message_handler.go: SendMessageHandler
//   - service/chat: 处理 send_message 事件
type SendMessageRequest struct {
	// ConversationUuid 目标会话 uuid
	ConversationUuid string `json:"conversation_uuid" binding:"required"`
	// Content 消息文本内容
	Content string `json:"content"`
	// Type 消息类型，0.文本，1.图片，2.文件，3.语音，4.视频
	Type int8 `json:"type"`
	// Url 媒体资源 URL
	Url string `json:"url"`
	// FileName 文件名
	FileName string `json:"file_name"`
	// FileSize 文件大小
	FileSize string `json:"file_size"`
	// ReplyTo 被回复消息的雪花 ID，字符串形式，空串表示非回复
	ReplyTo string `json:"reply_to"`
	// Mentions 提及的用户 UID 列表
	Mentions []string `json:"mentions"`
}
