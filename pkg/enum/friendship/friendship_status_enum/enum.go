// Package friendship_status_enum 好友关系状态枚举
// 状态机: PENDING -> {ACCEPTED, DECLINED}; ACCEPTED <-> BLOCKED
// DECLINED 后可以重新申请，复用原记录重置为 PENDING
// （唯一索引约束每对用户一条记录，不允许另起新行）
package friendship_status_enum

const (
	PENDING  int8 = iota // 申请中，等待对方处理
	ACCEPTED             // 已通过，双方互为好友
	DECLINED             // 已拒绝（可重新申请）
	BLOCKED              // 已拉黑（由拉黑方取消后恢复为 ACCEPTED）
)
