// Package dao 提供数据访问层的初始化和全局数据库实例管理
// 负责建立 PostgreSQL 连接、自动迁移表结构、初始化 Repository 层
package dao

import (
	"fmt"

	"habitlink_server/internal/config"
	"habitlink_server/internal/dao/postgres/repository"
	"habitlink_server/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormDB 全局 GORM 数据库实例
var GormDB *gorm.DB

// Repos 全局 Repository 实例集合
// 聚合所有 Repository，供 Service 层通过依赖注入使用
var Repos *repository.Repositories

// Init 初始化数据库连接和 Repository 层
// 执行步骤：
//  1. 从配置读取 PostgreSQL 连接信息
//  2. 构建 DSN 连接字符串
//  3. 使用 GORM 建立数据库连接（开启 TranslateError，
//     唯一约束冲突会被翻译为 gorm.ErrDuplicatedKey）
//  4. 执行 AutoMigrate 自动迁移表结构
//  5. 初始化全局 Repository 实例
func Init() {
	conf := config.GetConfig()

	// 构建 PostgreSQL DSN 连接字符串
	sslMode := conf.PostgresConfig.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conf.PostgresConfig.Host,
		conf.PostgresConfig.Port,
		conf.PostgresConfig.User,
		conf.PostgresConfig.Password,
		conf.PostgresConfig.DatabaseName,
		sslMode,
	)

	var err error
	GormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// AutoMigrate 自动迁移表结构
	// 表不存在则创建，字段变更则更新结构，不会删除已有字段或数据
	err = GormDB.AutoMigrate(
		&model.UserInfo{},                // 用户信息表
		&model.Friendship{},              // 好友关系表
		&model.FriendNotification{},      // 好友通知表
		&model.Conversation{},            // 会话表
		&model.ConversationParticipant{}, // 会话成员表
		&model.Message{},                 // 消息表
	)
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// 初始化全局 Repository 实例集合
	Repos = repository.NewRepositories(GormDB)
}
