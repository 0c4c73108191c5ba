// Package repository 提供各实体的数据访问实现
// 本文件定义所有 Repository 接口
// Service 层只依赖接口，测试中以桩实现替换
package repository

import (
	"time"

	"habitlink_server/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Create 创建用户
	Create(user *model.UserInfo) error
	// FindByUid 按对外 UID 查询用户
	FindByUid(uid string) (*model.UserInfo, error)
	// FindByLogin 按用户名或邮箱查询用户（登录用）
	FindByLogin(login string) (*model.UserInfo, error)
	// FindByUids 批量按 UID 查询用户
	FindByUids(uids []string) ([]model.UserInfo, error)
	// UpdateFields 按 UID 更新指定字段
	UpdateFields(uid string, fields map[string]any) error
}

// FriendshipRepository 好友关系数据访问接口
type FriendshipRepository interface {
	// Create 创建好友关系记录
	Create(friendship *model.Friendship) error
	// FindByUuid 按关系 uuid 查询
	FindByUuid(uuid string) (*model.Friendship, error)
	// FindBetween 双向查询两个用户间的关系记录
	// (a,b) 与 (b,a) 视为同一对，返回存在的那条
	FindBetween(a, b string) (*model.Friendship, error)
	// FindFriendsByUser 查询 uid 参与且处于指定状态的所有关系
	FindFriendsByUser(uid string, status int8) ([]model.Friendship, error)
	// FindPendingReceived 查询 uid 收到的待处理申请
	FindPendingReceived(uid string) ([]model.Friendship, error)
	// FindPendingSent 查询 uid 发出的待处理申请
	FindPendingSent(uid string) ([]model.Friendship, error)
	// UpdateFields 按关系 uuid 更新指定字段
	UpdateFields(uuid string, fields map[string]any) error
}

// FriendNotificationRepository 好友通知数据访问接口
type FriendNotificationRepository interface {
	// Create 创建通知
	Create(notification *model.FriendNotification) error
	// FindByRecipient 查询接收方的通知，按创建时间倒序
	FindByRecipient(recipientId string, onlyUnread bool) ([]model.FriendNotification, error)
	// MarkRead 将接收方的若干通知标记为已读，返回受影响行数
	// uuids 为空时标记该接收方全部未读通知
	MarkRead(recipientId string, uuids []string, readAt time.Time) (int64, error)
}

// ConversationRepository 会话数据访问接口
type ConversationRepository interface {
	// Create 创建会话
	Create(conversation *model.Conversation) error
	// FindByUuid 按会话 uuid 查询
	FindByUuid(uuid string) (*model.Conversation, error)
	// FindByUuids 批量按会话 uuid 查询
	FindByUuids(uuids []string) ([]model.Conversation, error)
	// FindPrivateByPair 查询两个用户之间的私聊会话
	// 不存在时返回 CodeNotFound 错误
	FindPrivateByPair(a, b string) (*model.Conversation, error)
	// UpdateFields 按会话 uuid 更新指定字段
	UpdateFields(uuid string, fields map[string]any) error
}

// ParticipantRepository 会话成员数据访问接口
type ParticipantRepository interface {
	// Create 添加成员
	Create(participant *model.ConversationParticipant) error
	// CreateBatch 批量添加成员
	CreateBatch(participants []model.ConversationParticipant) error
	// FindByConversationAndUser 查询指定会话中的指定成员
	FindByConversationAndUser(conversationUuid, userId string) (*model.ConversationParticipant, error)
	// FindActiveByConversation 查询会话的全部在场成员（未软退出）
	FindActiveByConversation(conversationUuid string) ([]model.ConversationParticipant, error)
	// FindActiveByUser 查询用户在场的全部会话成员记录
	FindActiveByUser(userId string) ([]model.ConversationParticipant, error)
	// UpdateLastRead 推进成员的已读水位
	UpdateLastRead(conversationUuid, userId string, readAt time.Time) error
	// UpdateFields 更新指定成员记录的字段
	UpdateFields(conversationUuid, userId string, fields map[string]any) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 写入消息
	Create(message *model.Message) error
	// FindByUuid 按雪花 ID 查询消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindPageByConversation 分页查询会话消息
	// 按 (sent_at, uuid) 倒序，page 从 1 开始
	FindPageByConversation(conversationUuid string, page, size int) ([]model.Message, error)
	// CountByConversation 统计会话消息总数
	CountByConversation(conversationUuid string) (int64, error)
	// CountUnread 统计成员未读消息数
	// 即 sent_at 晚于已读水位且发送者非本人的消息条数
	CountUnread(conversationUuid, userId string, after time.Time) (int64, error)
	// UpdateFields 按雪花 ID 更新指定字段
	UpdateFields(uuid int64, fields map[string]any) error
}
