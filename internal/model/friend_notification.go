// Package model 定义数据库实体模型
// 本文件定义好友通知模型，作为好友关系状态变化的事件记录
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// FriendNotification 好友通知模型
// 对应数据库 friend_notification 表
// 由好友关系的状态迁移（申请/通过/拒绝/拉黑）作为副作用写入，
// 归属于接收方用户，随父级好友关系级联删除
// （实践中好友关系从不删除，级联只是兜底）
type FriendNotification struct {
	gorm.Model

	// Uuid 通知唯一标识
	// 格式：N + 17位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:通知uuid"`

	// FriendshipUuid 关联的好友关系 uuid
	FriendshipUuid string `gorm:"column:friendship_uuid;index;type:char(20);not null;comment:关系uuid"`

	// RecipientId 通知接收方 UID
	RecipientId string `gorm:"column:recipient_id;index;type:char(11);not null;comment:接收方UID"`

	// SenderId 触发通知的一方 UID
	SenderId string `gorm:"column:sender_id;type:char(11);not null;comment:触发方UID"`

	// Kind 通知类型，参见 pkg/enum/notification/notification_type_enum
	Kind int8 `gorm:"column:kind;not null;comment:类型，0.申请，1.通过，2.拒绝，3.拉黑"`

	// Message 附言（申请附言或拒绝理由）
	Message string `gorm:"column:message;type:varchar(100);comment:附言"`

	// IsRead 是否已读
	IsRead bool `gorm:"column:is_read;not null;default:false;comment:是否已读"`

	// ReadAt 已读时间
	ReadAt sql.NullTime `gorm:"column:read_at;comment:已读时间"`
}

// TableName 指定表名
func (FriendNotification) TableName() string {
	return "friend_notification"
}
