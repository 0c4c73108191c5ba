// Package chat 实现实时消息网关
// events.go
// 核心职责：定义 WebSocket 事件协议
// 客户端与服务端之间的每一帧都是 {event, data} 形式的 JSON
package chat

import "encoding/json"

// 客户端 -> 服务端事件
const (
	EventSendMessage       = "send_message"       // 发送消息
	EventMarkAsRead        = "mark_as_read"       // 标记会话已读
	EventTyping            = "typing"             // 正在输入
	EventJoinConversation  = "join_conversation"  // 加入会话房间
	EventLeaveConversation = "leave_conversation" // 离开会话房间
)

// 服务端 -> 客户端事件
const (
	EventNewMessage          = "new_message"           // 新消息推送
	EventMessageStatusUpdate = "message_status_update" // 已读水位/消息状态变化
	EventUserTyping          = "user_typing"           // 对方正在输入
	EventAuthError           = "auth_error"            // 认证失败
	EventError               = "error"                 // 通用错误
)

// ClientEvent 客户端上行帧
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerEvent 服务端下行帧
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Envelope Broker 内部流转的消息信封
// WebSocket 读协程把客户端事件包上发送者身份后投递给 Broker，
// Kafka 模式下信封原样进出消息队列
type Envelope struct {
	Sender string          `json:"sender"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// EventBroadcast Broker 内部事件：携带已处理完的载荷做纯扇出
// REST 路径落库后通过它把推送交给 Broker
const EventBroadcast = "broadcast"

// BroadcastData EventBroadcast 的信封载荷
type BroadcastData struct {
	// Recipients 目标用户 UID 列表
	Recipients []string `json:"recipients"`
	// Event 下发给客户端的事件名
	Event string `json:"event"`
	// Payload 下发给客户端的事件载荷
	Payload json.RawMessage `json:"payload"`
	// MessageUuid 关联消息的雪花 ID，推送成功后更新投递状态（0 表示无关联消息）
	MessageUuid int64 `json:"message_uuid,omitempty"`
}

// ConversationEventData join/leave/mark_as_read/typing 事件的数据体
type ConversationEventData struct {
	ConversationUuid string `json:"conversation_uuid"`
}

// TypingData user_typing 下行事件数据体
type TypingData struct {
	ConversationUuid string `json:"conversation_uuid"`
	Uid              string `json:"uid"`
}

// StatusUpdateData message_status_update 下行事件数据体
type StatusUpdateData struct {
	ConversationUuid string `json:"conversation_uuid"`
	Uid              string `json:"uid"`
	LastReadAt       string `json:"last_read_at"`
}

// ErrorData error/auth_error 下行事件数据体
type ErrorData struct {
	Message string `json:"message"`
}
