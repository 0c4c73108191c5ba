// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层和 WebSocket 网关调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"time"

	"habitlink_server/internal/dto/request"
	"habitlink_server/internal/dto/respond"
)

// UserService 用户业务接口
// 处理注册、登录、令牌刷新
type UserService interface {
	// Register 用户注册，成功后直接返回登录态
	Register(req request.RegisterRequest) (*respond.LoginRespond, error)
	// Login 用户名/邮箱 + 密码登录
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 用 Refresh Token 换取新的令牌对
	RefreshToken(req request.RefreshTokenRequest) (*respond.TokenRespond, error)
}

// FriendService 好友关系业务接口
// 覆盖好友状态机的全部迁移和衍生查询
type FriendService interface {
	// SendRequest 发送好友申请
	// 对方已拒绝过的记录会被复用重置为申请中
	SendRequest(requesterId string, req request.SendFriendRequest) (*respond.FriendRequestRespond, error)
	// RespondToRequest 处理好友申请，仅被申请人可调用
	// 通过时在同一事务内建立私聊会话，返回该会话 uuid（拒绝时为空串）
	RespondToRequest(userId, friendshipUuid string, req request.RespondFriendRequest) (string, error)
	// RemoveFriend 删除好友，消息历史保留，之后可重新申请
	RemoveFriend(userId, friendshipUuid string) error
	// Block 拉黑好友，双方均无法再互发消息
	Block(userId, friendshipUuid string) error
	// Unblock 取消拉黑，仅拉黑发起方可调用
	Unblock(userId, friendshipUuid string) error
	// UpdateSettings 更新备注名/星标/免打扰，只影响调用方自己那一侧
	UpdateSettings(userId, friendshipUuid string, req request.UpdateFriendSettingsRequest) error
	// ListFriends 好友列表，附带在线状态和未读数
	ListFriends(userId string) ([]respond.FriendRespond, error)
	// ListRequests 待处理申请列表，direction 为 received 或 sent
	ListRequests(userId, direction string) ([]respond.FriendRequestRespond, error)
	// ListNotifications 好友通知列表
	ListNotifications(userId string, onlyUnread bool) ([]respond.NotificationRespond, error)
	// MarkNotificationsRead 标记通知已读，返回受影响条数
	MarkNotificationsRead(userId string, req request.MarkNotificationsReadRequest) (int64, error)
}

// ConversationService 会话业务接口
type ConversationService interface {
	// CreateConversation 创建会话
	// 私聊幂等：同一对用户重复创建返回已有会话
	CreateConversation(userId string, req request.CreateConversationRequest) (*respond.ConversationRespond, error)
	// ListConversations 会话列表，按最近消息时间倒序
	ListConversations(userId string) ([]respond.ConversationRespond, error)
	// MarkAsRead 推进调用方在会话中的已读水位，返回新水位时间
	MarkAsRead(userId, conversationUuid string) (time.Time, error)
	// ActiveParticipantIds 会话在场成员 UID 列表，消息扇出以此为准
	ActiveParticipantIds(conversationUuid string) ([]string, error)
	// ActiveConversationUuids 用户在场的会话 uuid 列表
	// WebSocket 连接建立时自动加入这些会话的房间
	ActiveConversationUuids(userId string) ([]string, error)
}

// MessageService 消息业务接口
// 发送/编辑/删除返回消息表示和应接收推送的成员 UID 列表，
// 由调用方（REST Handler 或 WebSocket 网关）负责扇出
type MessageService interface {
	// SendMessage 校验成员资格和好友拉黑状态后落库
	SendMessage(senderId string, req request.SendMessageRequest) (*respond.MessageRespond, []string, error)
	// GetMessageList 分页拉取会话消息，仅会话成员可调用
	GetMessageList(userId, conversationUuid string, page, size int) (*respond.MessageListRespond, error)
	// EditMessage 编辑消息文本，仅发送者可调用
	EditMessage(userId string, messageUuid int64, req request.EditMessageRequest) (*respond.MessageRespond, []string, error)
	// DeleteMessage 删除消息（软删除，保留排序位置），仅发送者可调用
	DeleteMessage(userId string, messageUuid int64) (*respond.MessageRespond, []string, error)
}
