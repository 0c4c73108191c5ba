// Package user_role_enum 用户角色枚举
package user_role_enum

const (
	USER  int8 = iota // 普通用户
	ADMIN             // 管理员
)
