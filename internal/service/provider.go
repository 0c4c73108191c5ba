// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"habitlink_server/internal/dao/postgres/repository"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/service/conversation"
	"habitlink_server/internal/service/friend"
	"habitlink_server/internal/service/message"
	"habitlink_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	User         UserService
	Friend       FriendService
	Conversation ConversationService
	Message      MessageService
}

// NewServices 创建并注入所有 Service 实例
// repos: Repository 层聚合实例
// presence: 在线状态跟踪器（好友列表的在线标记）
func NewServices(repos *repository.Repositories, presence myredis.PresenceTracker) *Services {
	return &Services{
		User:         user.NewUserService(repos),
		Friend:       friend.NewFriendService(repos, presence),
		Conversation: conversation.NewConversationService(repos),
		Message:      message.NewMessageService(repos),
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Friend.ListFriends() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 初始化之后
func InitServices(repos *repository.Repositories, presence myredis.PresenceTracker) {
	Svc = NewServices(repos, presence)
}
