// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含用户基本资料和认证信息
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
type UserInfo struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uid 用户对外唯一句柄
	// 11 位数字串，如 "10000000001"，注册时生成，区别于数据库自增 ID
	Uid string `gorm:"column:uid;uniqueIndex;type:char(11);not null;comment:用户对外UID"`

	// Username 用户名，登录凭证之一
	Username string `gorm:"column:username;uniqueIndex;type:varchar(30);not null;comment:用户名"`

	// Email 邮箱地址，登录凭证之一
	Email string `gorm:"column:email;uniqueIndex;type:varchar(50);not null;comment:邮箱"`

	// Nickname 显示昵称
	Nickname string `gorm:"column:nickname;type:varchar(30);comment:昵称"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// Password 密码（已哈希）
	// 存储 bcrypt 哈希后的密码，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// Role 用户角色，参见 pkg/enum/user_info/user_role_enum
	Role int8 `gorm:"column:role;not null;default:0;comment:角色，0.普通用户，1.管理员"`

	// IsActive 账号状态
	// 用户从不物理删除，注销即置 false
	IsActive bool `gorm:"column:is_active;not null;default:true;comment:是否启用"`

	// LastOnlineAt 上次在线时间
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;comment:上次在线时间"`

	// RawPassword 明文密码（不存入数据库）
	// 用于接收前端传来的明文密码，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave GORM Hook：在创建和更新前自动调用
// 将 RawPassword 明文密码加密后存入 Password 字段
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = "" // 清空明文，防止泄露
	}
	return nil
}

// CheckPassword 校验密码是否正确
// plaintext: 用户输入的明文密码
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
