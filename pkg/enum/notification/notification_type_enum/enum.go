// Package notification_type_enum 好友通知类型枚举
package notification_type_enum

const (
	REQUEST  int8 = iota // 收到好友申请
	ACCEPTED             // 申请被通过
	DECLINED             // 申请被拒绝
	BLOCKED              // 被对方拉黑
)
