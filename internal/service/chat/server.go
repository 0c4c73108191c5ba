// Package chat 实现实时消息网关
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 封装 MessageBroker、KafkaClient、在线状态跟踪器，提供统一的生命周期管理
package chat

import (
	"encoding/json"

	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/service"
)

// ChatServer 聊天服务器聚合结构
type ChatServer struct {
	// Broker 消息代理，根据配置为 ChannelBroker 或 KafkaBroker
	Broker MessageBroker

	// KafkaClient Kafka 客户端（仅 Kafka 模式使用）
	KafkaClient *KafkaClient

	// Presence 在线状态跟踪器
	Presence myredis.PresenceTracker

	// svc 业务层
	svc *service.Services

	// mode 运行模式: "channel" 或 "kafka"
	mode string
}

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode     string // "channel" 或 "kafka"
	Services *service.Services
	Presence myredis.PresenceTracker
}

// NewChatServer 创建聊天服务器实例
// 根据配置选择 ChannelBroker（默认）或 KafkaBroker
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	cs := &ChatServer{
		Presence: cfg.Presence,
		svc:      cfg.Services,
		mode:     cfg.Mode,
	}

	if cfg.Mode == "kafka" {
		cs.KafkaClient = NewKafkaClient()
		cs.Broker = NewKafkaBroker(cfg.Services, cs.KafkaClient)
	} else {
		cs.Broker = NewChannelBroker(cfg.Services)
	}
	return cs
}

// InitKafka 初始化 Kafka 连接（仅 Kafka 模式需要调用）
func (cs *ChatServer) InitKafka() {
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaInit()
	}
}

// Start 启动聊天服务器（阻塞，应在独立协程中运行）
func (cs *ChatServer) Start() {
	cs.Broker.Start()
}

// Close 关闭聊天服务器
func (cs *ChatServer) Close() {
	cs.Broker.Close()
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaClose()
	}
}

// BroadcastEvent REST 路径落库后的扇出入口
// Kafka 模式下信封经由消息队列流转，由消费组内的单个实例处理
func (cs *ChatServer) BroadcastEvent(recipients []string, event string, payload any, messageUuid int64) {
	if len(recipients) == 0 {
		return
	}
	if cs.mode == "kafka" {
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		data, err := json.Marshal(BroadcastData{
			Recipients:  recipients,
			Event:       event,
			Payload:     raw,
			MessageUuid: messageUuid,
		})
		if err != nil {
			return
		}
		env, err := json.Marshal(Envelope{Event: EventBroadcast, Data: data})
		if err != nil {
			return
		}
		_ = cs.Broker.Publish(ctx, env)
		return
	}
	_ = cs.Broker.Broadcast(recipients, event, payload, messageUuid)
}

// GlobalChatServer 全局聊天服务器实例
// 在 main.go 中根据配置初始化
var GlobalChatServer *ChatServer

// InitChatServer 初始化全局聊天服务器实例
func InitChatServer(cfg ChatServerConfig) *ChatServer {
	GlobalChatServer = NewChatServer(cfg)
	return GlobalChatServer
}
