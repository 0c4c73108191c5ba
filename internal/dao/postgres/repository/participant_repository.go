// Package repository 提供各实体的数据访问实现
// 本文件实现会话成员数据访问
package repository

import (
	"time"

	"habitlink_server/internal/model"

	"gorm.io/gorm"
)

// participantRepository ParticipantRepository 的 GORM 实现
type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository 创建会话成员 Repository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

// Create 添加成员
// 并发重复加入由 idx_conv_user 唯一索引兜底，返回 Conflict
func (r *participantRepository) Create(participant *model.ConversationParticipant) error {
	if err := r.db.Create(participant).Error; err != nil {
		return wrapDBError(err, "添加会话成员失败")
	}
	return nil
}

// CreateBatch 批量添加成员
func (r *participantRepository) CreateBatch(participants []model.ConversationParticipant) error {
	if len(participants) == 0 {
		return nil
	}
	if err := r.db.Create(&participants).Error; err != nil {
		return wrapDBError(err, "添加会话成员失败")
	}
	return nil
}

// FindByConversationAndUser 查询指定会话中的指定成员
func (r *participantRepository) FindByConversationAndUser(conversationUuid, userId string) (*model.ConversationParticipant, error) {
	var participant model.ConversationParticipant
	err := r.db.Where("conversation_uuid = ? AND user_id = ?", conversationUuid, userId).
		First(&participant).Error
	if err != nil {
		return nil, wrapDBError(err, "会话成员不存在")
	}
	return &participant, nil
}

// FindActiveByConversation 查询会话的全部在场成员
// 消息扇出以这份名单为准
func (r *participantRepository) FindActiveByConversation(conversationUuid string) ([]model.ConversationParticipant, error) {
	var participants []model.ConversationParticipant
	err := r.db.Where("conversation_uuid = ? AND left_at IS NULL", conversationUuid).
		Find(&participants).Error
	if err != nil {
		return nil, wrapDBError(err, "查询会话成员失败")
	}
	return participants, nil
}

// FindActiveByUser 查询用户在场的全部会话成员记录
func (r *participantRepository) FindActiveByUser(userId string) ([]model.ConversationParticipant, error) {
	var participants []model.ConversationParticipant
	err := r.db.Where("user_id = ? AND left_at IS NULL", userId).
		Find(&participants).Error
	if err != nil {
		return nil, wrapDBError(err, "查询会话成员失败")
	}
	return participants, nil
}

// UpdateLastRead 推进成员的已读水位
// 已读时间只前进不后退，落后的标记请求直接丢弃
func (r *participantRepository) UpdateLastRead(conversationUuid, userId string, readAt time.Time) error {
	err := r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_uuid = ? AND user_id = ?", conversationUuid, userId).
		Where("last_read_at IS NULL OR last_read_at < ?", readAt).
		Update("last_read_at", readAt).Error
	if err != nil {
		return wrapDBError(err, "更新已读水位失败")
	}
	return nil
}

// UpdateFields 更新指定成员记录的字段
func (r *participantRepository) UpdateFields(conversationUuid, userId string, fields map[string]any) error {
	err := r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_uuid = ? AND user_id = ?", conversationUuid, userId).
		Updates(fields).Error
	if err != nil {
		return wrapDBError(err, "更新会话成员失败")
	}
	return nil
}
