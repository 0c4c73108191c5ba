// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储聊天消息
package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表
// 消息按 (conversation_uuid, sent_at) 排序，sent_at 相同时以雪花 ID 定序，
// 一旦写入不再物理重排；编辑/删除均为软操作（标志位 + 时间戳），
// 已拉取过历史的客户端缓存不会因此产生空洞
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 雪花算法生成的 int64，同节点随时间单调递增
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ConversationUuid 所属会话 uuid
	ConversationUuid string `gorm:"column:conversation_uuid;index:idx_conv_sent;type:char(20);not null;comment:会话uuid"`

	// SendId 发送者 UID，空串表示系统消息
	SendId string `gorm:"column:send_id;index;type:char(11);comment:发送者UID"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:text;comment:消息内容"`

	// Type 消息类型，参见 pkg/enum/message/message_type_enum
	Type int8 `gorm:"column:type;not null;comment:类型，0.文本，1.图片，2.文件，3.语音，4.视频，5.系统"`

	// Url 媒体资源 URL（图片/文件/语音/视频消息）
	Url string `gorm:"column:url;type:varchar(255);comment:媒体url"`

	// FileName 文件名
	FileName string `gorm:"column:file_name;type:varchar(50);comment:文件名"`

	// FileSize 文件大小，字符串格式如 "1.5MB"
	FileSize string `gorm:"column:file_size;type:char(20);comment:文件大小"`

	// ReplyTo 被回复消息的雪花 ID，0 表示非回复
	ReplyTo int64 `gorm:"column:reply_to;type:bigint;not null;default:0;comment:被回复消息ID"`

	// Reactions 表情回应，JSON 序列化的 {emoji: [uid...]}
	Reactions string `gorm:"column:reactions;type:text;comment:表情回应"`

	// Mentions 提及的用户 UID 列表，JSON 序列化
	Mentions string `gorm:"column:mentions;type:text;comment:提及用户"`

	// IsEdited 是否被编辑过
	IsEdited bool `gorm:"column:is_edited;not null;default:false;comment:是否编辑过"`

	// EditedAt 最近编辑时间
	EditedAt sql.NullTime `gorm:"column:edited_at;comment:编辑时间"`

	// IsRevoked 是否已删除（软删除，消息仍占据排序位置）
	IsRevoked bool `gorm:"column:is_revoked;not null;default:false;comment:是否已删除"`

	// RevokedAt 删除时间
	RevokedAt sql.NullTime `gorm:"column:revoked_at;comment:删除时间"`

	// Status 投递状态，参见 pkg/enum/message/message_status_enum
	Status int8 `gorm:"column:status;not null;comment:状态，0.未推送，1.已推送，2.已送达"`

	// SentAt 发送时间，排序主关键字
	SentAt time.Time `gorm:"column:sent_at;index:idx_conv_sent;not null;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
