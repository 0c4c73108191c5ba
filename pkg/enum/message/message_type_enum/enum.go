// Package message_type_enum 消息类型枚举
package message_type_enum

const (
	Text   int8 = iota // 文本消息
	Image              // 图片消息
	File               // 文件消息
	Voice              // 语音消息
	Video              // 视频消息
	System             // 系统消息（sender 为空）
)
