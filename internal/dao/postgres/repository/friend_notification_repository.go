// Package repository 提供各实体的数据访问实现
// 本文件实现好友通知数据访问
package repository

import (
	"time"

	"habitlink_server/internal/model"

	"gorm.io/gorm"
)

// friendNotificationRepository FriendNotificationRepository 的 GORM 实现
type friendNotificationRepository struct {
	db *gorm.DB
}

// NewFriendNotificationRepository 创建好友通知 Repository
func NewFriendNotificationRepository(db *gorm.DB) FriendNotificationRepository {
	return &friendNotificationRepository{db: db}
}

// Create 创建通知
func (r *friendNotificationRepository) Create(notification *model.FriendNotification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return wrapDBError(err, "创建通知失败")
	}
	return nil
}

// FindByRecipient 查询接收方的通知，按创建时间倒序
func (r *friendNotificationRepository) FindByRecipient(recipientId string, onlyUnread bool) ([]model.FriendNotification, error) {
	var notifications []model.FriendNotification
	query := r.db.Where("recipient_id = ?", recipientId)
	if onlyUnread {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, wrapDBError(err, "查询通知失败")
	}
	return notifications, nil
}

// MarkRead 将接收方的若干通知标记为已读
// uuids 为空时标记该接收方全部未读通知，已读通知不重复更新
func (r *friendNotificationRepository) MarkRead(recipientId string, uuids []string, readAt time.Time) (int64, error) {
	query := r.db.Model(&model.FriendNotification{}).
		Where("recipient_id = ? AND is_read = ?", recipientId, false)
	if len(uuids) > 0 {
		query = query.Where("uuid IN ?", uuids)
	}
	result := query.Updates(map[string]any{
		"is_read": true,
		"read_at": readAt,
	})
	if result.Error != nil {
		return 0, wrapDBError(result.Error, "更新通知失败")
	}
	return result.RowsAffected, nil
}
