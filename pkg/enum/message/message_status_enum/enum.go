// Package message_status_enum 消息投递状态枚举
package message_status_enum

const (
	Unsent    int8 = iota // 已入库，尚未推送
	Sent                  // 已通过 WebSocket 推送
	Delivered             // 客户端已确认收到
)
