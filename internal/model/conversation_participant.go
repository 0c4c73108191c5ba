// Package model 定义数据库实体模型
// 本文件定义会话成员模型，承载成员的个人会话状态
package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ConversationParticipant 会话成员模型
// 对应数据库 conversation_participant 表
// (conversation_uuid, user_id) 唯一，数据库唯一约束兜底并发重复加入
type ConversationParticipant struct {
	gorm.Model

	// ConversationUuid 会话 uuid
	ConversationUuid string `gorm:"column:conversation_uuid;uniqueIndex:idx_conv_user;type:char(20);not null;comment:会话uuid"`

	// UserId 成员 UID
	UserId string `gorm:"column:user_id;uniqueIndex:idx_conv_user;index;type:char(11);not null;comment:成员UID"`

	// Role 成员角色，参见 pkg/enum/participant/participant_role_enum
	Role int8 `gorm:"column:role;not null;default:2;comment:角色，0.群主，1.管理员，2.成员"`

	// JoinedAt 加入时间
	JoinedAt time.Time `gorm:"column:joined_at;not null;comment:加入时间"`

	// LastReadAt 最近已读时间
	// 未读数 = sent_at 晚于该时间且非本人发送的消息条数，始终推导，不落库
	LastReadAt sql.NullTime `gorm:"column:last_read_at;comment:最近已读时间"`

	// LeftAt 退出时间（软退出，保留历史）
	LeftAt sql.NullTime `gorm:"column:left_at;comment:退出时间"`

	// IsMuted 该成员是否对会话免打扰
	IsMuted bool `gorm:"column:is_muted;not null;default:false;comment:免打扰"`

	// IsPinned 该成员是否置顶会话
	IsPinned bool `gorm:"column:is_pinned;not null;default:false;comment:置顶"`
}

// TableName 指定表名
func (ConversationParticipant) TableName() string {
	return "conversation_participant"
}

// Active 判断成员当前是否在会话中（未软退出）
func (p *ConversationParticipant) Active() bool {
	return !p.LeftAt.Valid
}
