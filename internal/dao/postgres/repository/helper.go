// Package repository 提供各实体的数据访问实现
// 本文件提供 Repository 层的公共辅助函数
package repository

import (
	"errors"

	"habitlink_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 将 GORM 错误统一翻译为业务错误
// gorm.ErrRecordNotFound -> CodeNotFound
// gorm.ErrDuplicatedKey  -> CodeConflict（需开启 TranslateError）
// 其余数据库错误         -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errorx.Wrap(err, errorx.CodeConflict, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}
