package request

// CreateConversationRequest 创建会话请求
// 私聊：target_uid 必填，name/member_ids 忽略，重复创建返回已有会话；
// 群聊：name 必填，member_ids 为除创建者外的初始成员
// 使用位置:
//   - handler/conversation_handler.go: CreateConversationHandler
type CreateConversationRequest struct {
	// Type 会话类型，private 或 group
	Type string `json:"type" binding:"required,oneof=private group"`
	// TargetUid 私聊对端 UID
	TargetUid string `json:"target_uid"`
	// Name 群聊名称
	Name string `json:"name" binding:"max=30"`
	// Description 群聊描述
	Description string `json:"description" binding:"max=100"`
	// MemberIds 群聊初始成员 UID 列表
	MemberIds []string `json:"member_ids"`
}
