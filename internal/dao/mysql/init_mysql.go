// Package mysql is the gorm/MySQL Store backend.
package mysql

import (
	"fmt"

	"usermanagement_server/internal/config"
	"usermanagement_server/internal/dao/mysql/repository"
	"usermanagement_server/internal/model"

	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the go-sql-driver connection string for conf.
func DSN(conf config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
}

// Open connects with the given DSN, migrates the schema and returns the Store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.AutoMigrate(&model.UserInfo{}, &model.FriendRequest{}); err != nil {
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	return NewStore(repository.NewRepositories(db)), nil
}
