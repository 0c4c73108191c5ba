package request

// GetMessageListRequest 分页拉取会话消息请求
// 使用位置:
//   - handler/message_handler.go: GetMessageListHandler
type GetMessageListRequest struct {
	// Page 页码，从 1 开始
	Page int `form:"page"`
	// Size 每页条数，默认 20，上限 100
	Size int `form:"size"`
}
