package request

// EditMessageRequest 编辑消息请求
// 使用位置:
//   - handler/message_handler.go: EditMessageHandler
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
