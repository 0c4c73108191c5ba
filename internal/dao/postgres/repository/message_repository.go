// Package repository 提供各实体的数据访问实现
// 本文件实现消息数据访问
package repository

import (
	"time"

	"habitlink_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 的 GORM 实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 写入消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "写入消息失败")
	}
	return nil
}

// FindByUuid 按雪花 ID 查询消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBError(err, "消息不存在")
	}
	return &message, nil
}

// FindPageByConversation 分页查询会话消息
// 按 (sent_at, uuid) 倒序，最新的在前；
// sent_at 相同时以雪花 ID 定序，保证翻页不抖动
func (r *messageRepository) FindPageByConversation(conversationUuid string, page, size int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_uuid = ?", conversationUuid).
		Order("sent_at DESC, uuid DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBError(err, "查询消息失败")
	}
	return messages, nil
}

// CountByConversation 统计会话消息总数
func (r *messageRepository) CountByConversation(conversationUuid string) (int64, error) {
	var total int64
	err := r.db.Model(&model.Message{}).
		Where("conversation_uuid = ?", conversationUuid).
		Count(&total).Error
	if err != nil {
		return 0, wrapDBError(err, "统计消息失败")
	}
	return total, nil
}

// CountUnread 统计成员未读消息数
// 未读数始终推导，不落库
func (r *messageRepository) CountUnread(conversationUuid, userId string, after time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&model.Message{}).
		Where("conversation_uuid = ? AND send_id != ?", conversationUuid, userId)
	if !after.IsZero() {
		query = query.Where("sent_at > ?", after)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "统计未读消息失败")
	}
	return count, nil
}

// UpdateFields 按雪花 ID 更新指定字段
func (r *messageRepository) UpdateFields(uuid int64, fields map[string]any) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).Updates(fields).Error; err != nil {
		return wrapDBError(err, "更新消息失败")
	}
	return nil
}
