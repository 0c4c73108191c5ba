// Package participant_role_enum 会话成员角色枚举
package participant_role_enum

const (
	OWNER  int8 = iota // 群主（群聊创建者）
	ADMIN              // 管理员
	MEMBER             // 普通成员（私聊双方均为 MEMBER）
)
