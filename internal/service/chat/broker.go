// Package chat 实现实时消息网关
// broker.go
// 核心职责：定义消息代理接口
// 抽象消息投递和客户端管理，支持 Channel（单机，默认）和 Kafka 两种实现
package chat

import "context"

// MessageBroker 定义消息代理接口
type MessageBroker interface {
	// Publish 投递一条待处理的消息信封（Envelope 的 JSON）
	Publish(ctx context.Context, msg []byte) error
	// Broadcast 把已处理完的事件扇出给指定用户
	// messageUuid 非 0 时推送成功后会把该消息状态置为已推送
	Broadcast(recipients []string, event string, payload any, messageUuid int64) error
	// RegisterClient 注册客户端连接
	RegisterClient(client *UserConn)
	// UnregisterClient 注销客户端连接
	UnregisterClient(client *UserConn)
	// GetClient 获取指定用户的连接
	GetClient(userId string) *UserConn
	// JoinRoom 把用户加入会话房间（typing 等房间事件的送达范围）
	JoinRoom(conversationUuid, userId string)
	// LeaveRoom 把用户移出会话房间
	LeaveRoom(conversationUuid, userId string)
	// Start 启动消息消费循环
	Start()
	// Close 关闭代理资源
	Close()
}
