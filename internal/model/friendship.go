// Package model 定义数据库实体模型
// 本文件定义好友关系模型，一条记录对应一对用户
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Friendship 好友关系模型
// 对应数据库 friendship 表
// 每对用户（无序对）至多一条记录，方向由申请人决定：
// RequesterId 发起申请，AddresseeId 处理申请。
// (requester_id, addressee_id) 上有唯一复合索引，
// 应用层所有的"是否已有关系"检查都必须双向查询（FindBetween）。
type Friendship struct {
	gorm.Model

	// Uuid 关系唯一标识
	// 格式：F + 17位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:关系uuid"`

	// RequesterId 申请人 UID
	RequesterId string `gorm:"column:requester_id;uniqueIndex:idx_friend_pair;type:char(11);not null;comment:申请人UID"`

	// AddresseeId 被申请人 UID
	AddresseeId string `gorm:"column:addressee_id;uniqueIndex:idx_friend_pair;type:char(11);not null;comment:被申请人UID"`

	// Status 关系状态，参见 pkg/enum/friendship/friendship_status_enum
	// PENDING -> {ACCEPTED, DECLINED}; ACCEPTED <-> BLOCKED
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.申请中，1.已通过，2.已拒绝，3.已拉黑"`

	// RequestMessage 申请附言
	RequestMessage string `gorm:"column:request_message;type:varchar(100);comment:申请附言"`

	// RejectReason 拒绝理由
	RejectReason string `gorm:"column:reject_reason;type:varchar(100);comment:拒绝理由"`

	// BlockedBy 发起拉黑的一方 UID
	// 仅 Status=BLOCKED 时有值，取消拉黑必须由同一方发起
	BlockedBy string `gorm:"column:blocked_by;type:char(11);comment:拉黑发起方UID"`

	// ConversationUuid 派生的私聊会话 uuid
	// 仅在 Status 首次变为 ACCEPTED 时填充，之后复用（幂等）
	ConversationUuid string `gorm:"column:conversation_uuid;type:char(20);comment:派生私聊会话uuid"`

	// LastMessageAt 该私聊最近一条消息时间（冗余存储，用于好友列表排序）
	// 未读数不落库，始终由 last_read_at 与消息时间戳推导
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;comment:最近消息时间"`

	// 以下为双方各自的关系设置，归属方由字段前缀区分

	// RequesterAlias 申请方给对方设置的备注名
	RequesterAlias string `gorm:"column:requester_alias;type:varchar(30);comment:申请方备注名"`
	// AddresseeAlias 被申请方给对方设置的备注名
	AddresseeAlias string `gorm:"column:addressee_alias;type:varchar(30);comment:被申请方备注名"`
	// RequesterStarred 申请方是否星标对方
	RequesterStarred bool `gorm:"column:requester_starred;not null;default:false;comment:申请方星标"`
	// AddresseeStarred 被申请方是否星标对方
	AddresseeStarred bool `gorm:"column:addressee_starred;not null;default:false;comment:被申请方星标"`
	// RequesterMuted 申请方是否对该好友免打扰
	RequesterMuted bool `gorm:"column:requester_muted;not null;default:false;comment:申请方免打扰"`
	// AddresseeMuted 被申请方是否对该好友免打扰
	AddresseeMuted bool `gorm:"column:addressee_muted;not null;default:false;comment:被申请方免打扰"`
}

// TableName 指定表名
func (Friendship) TableName() string {
	return "friendship"
}

// OtherSide 返回关系中 uid 的对端 UID
// uid 不属于该关系时返回空串
func (f *Friendship) OtherSide(uid string) string {
	switch uid {
	case f.RequesterId:
		return f.AddresseeId
	case f.AddresseeId:
		return f.RequesterId
	}
	return ""
}

// Involves 判断 uid 是否为该关系的一方
func (f *Friendship) Involves(uid string) bool {
	return uid == f.RequesterId || uid == f.AddresseeId
}
