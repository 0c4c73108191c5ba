package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitlink_server/internal/config"
	dao "habitlink_server/internal/dao/postgres"
	myredis "habitlink_server/internal/dao/redis"
	"habitlink_server/internal/handler"
	"habitlink_server/internal/https_server"
	"habitlink_server/internal/infrastructure/logger"
	"habitlink_server/internal/service"
	"habitlink_server/internal/service/chat"
	"habitlink_server/pkg/util/jwt"
	"habitlink_server/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 4. 初始化雪花算法（消息 ID 生成）
	snowflake.Init()
	zap.L().Info("雪花算法初始化成功")

	// 5. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 6. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 7. 初始化在线状态跟踪器
	presence := myredis.NewRedisPresenceTracker()

	// 8. 初始化 Service 层（依赖注入）
	service.InitServices(dao.Repos, presence)
	zap.L().Info("Service 层初始化成功")

	// 9. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译器初始化失败", zap.Error(err))
	}

	// 10. 初始化 ChatServer
	chat.InitChatServer(chat.ChatServerConfig{
		Mode:     conf.KafkaConfig.MessageMode,
		Services: service.Svc,
		Presence: presence,
	})
	if conf.KafkaConfig.MessageMode == "kafka" {
		chat.GlobalChatServer.InitKafka()
	}
	go chat.GlobalChatServer.Start()
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 11. 初始化 HTTP 服务器
	engine := https_server.Init()
	zap.L().Info("HTTP 服务器初始化成功")

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务启动", zap.String("addr", srv.Addr))

	// 设置信号监听，等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	// 优雅关闭：先停 HTTP 入口，再关聊天网关和连接资源
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务器关闭异常", zap.Error(err))
	}

	chat.GlobalChatServer.Close()

	if err := myredis.Close(); err != nil {
		zap.L().Error("Redis 关闭异常", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}
