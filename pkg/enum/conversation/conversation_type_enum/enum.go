// Package conversation_type_enum 会话类型枚举
package conversation_type_enum

const (
	PRIVATE int8 = iota // 私聊，固定两个成员，由好友关系接受时派生
	GROUP               // 群聊
	AI                  // AI 助手会话
)
