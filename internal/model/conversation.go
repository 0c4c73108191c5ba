// Package model 定义数据库实体模型
// 本文件定义会话模型，会话是有序消息日志的容器
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Conversation 会话模型
// 对应数据库 conversation 表
// 私聊会话在好友申请通过时惰性创建，群聊会话显式创建
type Conversation struct {
	gorm.Model

	// Uuid 会话对外唯一标识
	// 格式：C + 17位时间戳随机字符串
	// WebSocket 房间以此命名
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:会话uuid"`

	// Type 会话类型，参见 pkg/enum/conversation/conversation_type_enum
	Type int8 `gorm:"column:type;not null;comment:类型，0.私聊，1.群聊，2.AI"`

	// Name 会话名称（私聊为空，前端显示对方昵称）
	Name string `gorm:"column:name;type:varchar(30);comment:名称"`

	// Description 会话描述
	Description string `gorm:"column:description;type:varchar(100);comment:描述"`

	// Avatar 会话头像
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// CreatorId 创建者 UID（私聊为申请方）
	CreatorId string `gorm:"column:creator_id;type:char(11);not null;comment:创建者UID"`

	// IsActive 会话是否有效
	IsActive bool `gorm:"column:is_active;not null;default:true;comment:是否有效"`

	// LastMessageAt 最近一条消息时间，用于会话列表排序
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;comment:最近消息时间"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversation"
}
