package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gameshop/internal/config"
	"gameshop/internal/model"
	"gameshop/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化数据库连接
// 线上走 MySQL，本地开发走 SQLite，二者共用同一套模型和迁移
func InitDB(cfg *config.DatabaseConfig) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
		)
		dialector = mysql.Open(dsn)
	default:
		log.Fatalf("不支持的数据库驱动: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 DB 失败: %v", err)
	}

	// 连接池配置
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatalf("初始化表结构失败: %v", err)
	}

	DB = db
	log.Printf("数据库连接成功: driver=%s", cfg.Driver)
	return db
}

// Migrate 自动迁移表结构并灌入初始商品目录
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.ShopItem{},
		&model.UserSkin{},
		&model.RechargeRecord{},
		&model.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("自动迁移表结构失败: %w", err)
	}

	return seedShopItems(db)
}

// seedShopItems 商品目录只在表为空时灌入一次，之后不再变动
func seedShopItems(db *gorm.DB) error {
	itemRepo := repository.NewItemRepository(db)

	count, err := itemRepo.Count(context.Background())
	if err != nil {
		return fmt.Errorf("查询商品数量失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := make([]model.ShopItem, len(model.DefaultShopItems))
	copy(items, model.DefaultShopItems)
	if err := itemRepo.BatchCreate(context.Background(), items); err != nil {
		return fmt.Errorf("灌入初始商品失败: %w", err)
	}

	log.Printf("初始商品目录已灌入: %d 件", len(items))
	return nil
}
