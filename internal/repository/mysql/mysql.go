package mysql

import (
	"errors"

	"campushub/internal/pkg"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 初始化全局连接；TranslateError 把唯一键冲突统一成 gorm.ErrDuplicatedKey
func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// translate 存储错误到业务错误的统一出口
func translate(err error, entity string, id uint64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkg.Wrap(pkg.KindNotFound, entity, id, "not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return pkg.Wrap(pkg.KindConflict, entity, id, "duplicate", err)
	}
	return err
}
