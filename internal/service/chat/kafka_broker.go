// Package chat 实现实时消息网关
// kafka_broker.go
// 核心职责：Kafka 模式下的消息代理实现
// 消息信封经由 Kafka 流转，消费后复用 ChannelBroker 的业务处理逻辑；
// 客户端连接和房间仍是本进程状态
package chat

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	myconfig "habitlink_server/internal/config"
	"habitlink_server/internal/service"
)

// KafkaBroker Kafka 消息代理
// 组合 ChannelBroker：登录/登出/扇出共用其实现，Publish 改走 Kafka
type KafkaBroker struct {
	inner  *ChannelBroker
	client *KafkaClient

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewKafkaBroker 创建 Kafka 消息代理实例
func NewKafkaBroker(svc *service.Services, client *KafkaClient) *KafkaBroker {
	return &KafkaBroker{
		inner:  NewChannelBroker(svc),
		client: client,
	}
}

// Start 启动消费循环
// 1. 后台运行 ChannelBroker 主循环（处理 Login/Logout）
// 2. 当前协程循环消费 Kafka 中的消息信封
func (b *KafkaBroker) Start() {
	go b.inner.Start()

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	for {
		msg, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().Error("kafka read message error", zap.Error(err))
			continue
		}
		b.inner.HandleEnvelope(msg.Value)
	}
}

// Publish 实现 MessageBroker 接口：把信封写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, msg []byte) error {
	key := []byte(strconv.Itoa(myconfig.GetConfig().KafkaConfig.Partition))
	return b.client.SendMessage(ctx, key, msg)
}

// Broadcast 实现 MessageBroker 接口
// 本进程直接扇出；多实例部署时其余实例通过消费同一信封补齐各自的在线客户端
func (b *KafkaBroker) Broadcast(recipients []string, event string, payload any, messageUuid int64) error {
	return b.inner.Broadcast(recipients, event, payload, messageUuid)
}

// RegisterClient 实现 MessageBroker 接口
func (b *KafkaBroker) RegisterClient(client *UserConn) {
	b.inner.RegisterClient(client)
}

// UnregisterClient 实现 MessageBroker 接口
func (b *KafkaBroker) UnregisterClient(client *UserConn) {
	b.inner.UnregisterClient(client)
}

// GetClient 获取客户端
func (b *KafkaBroker) GetClient(userId string) *UserConn {
	return b.inner.GetClient(userId)
}

// JoinRoom 把用户加入会话房间
func (b *KafkaBroker) JoinRoom(conversationUuid, userId string) {
	b.inner.JoinRoom(conversationUuid, userId)
}

// LeaveRoom 把用户移出会话房间
func (b *KafkaBroker) LeaveRoom(conversationUuid, userId string) {
	b.inner.LeaveRoom(conversationUuid, userId)
}

// Close 关闭代理资源
func (b *KafkaBroker) Close() {
	b.closeOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.inner.Close()
	})
}
