// Package repository 提供各实体的数据访问实现
// 本文件定义 Repository 聚合器，统一管理所有 Repository 实例
package repository

import (
	"gorm.io/gorm"
)

// Repositories 所有 Repository 的聚合
// 通过 NewRepositories 一次性创建，Service 层按需取用
type Repositories struct {
	db *gorm.DB

	User               UserRepository
	Friendship         FriendshipRepository
	FriendNotification FriendNotificationRepository
	Conversation       ConversationRepository
	Participant        ParticipantRepository
	Message            MessageRepository
}

// NewRepositories 创建 Repository 聚合实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:                 db,
		User:               NewUserRepository(db),
		Friendship:         NewFriendshipRepository(db),
		FriendNotification: NewFriendNotificationRepository(db),
		Conversation:       NewConversationRepository(db),
		Participant:        NewParticipantRepository(db),
		Message:            NewMessageRepository(db),
	}
}

// Transaction 在单个数据库事务中执行 fn
// fn 收到的 Repositories 绑定事务连接，fn 返回错误则整体回滚
// 好友申请通过时的"改状态 + 建会话 + 加成员 + 写通知"必须在一个事务里
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		// 无数据库连接（桩 Repository 场景）时直接执行，不提供回滚
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
