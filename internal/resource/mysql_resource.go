package resource

import (
	"fmt"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"convert-service/pkg/config"
	"convert-service/pkg/logger"
)

var (
	mysqlResourceOnce sync.Once
	mysqlSingleton    *MysqlResource
)

// MysqlResource manages the shared gorm connection pool.
type MysqlResource struct {
	db *gorm.DB
}

// DefaultMysqlResource returns the global MySQL resource instance.
func DefaultMysqlResource() *MysqlResource {
	mysqlResourceOnce.Do(func() {
		mysqlSingleton = &MysqlResource{}
	})
	return mysqlSingleton
}

func (r *MysqlResource) Name() string { return "mysql" }

// MustOpen connects to MySQL and configures the pool.
func (r *MysqlResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MysqlResource")
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("failed to connect mysql: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to access sql.DB: %v", err))
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	r.db = db
	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Database,
	})
}

// MainDB returns the shared gorm handle.
func (r *MysqlResource) MainDB() *gorm.DB {
	return r.db
}

func (r *MysqlResource) Close() {
	if r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
