package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gameshop/internal/config"
	"gameshop/internal/infrastructure/database"
	"gameshop/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB 内存 SQLite + 完整迁移（含初始商品目录）
// 连接池压到 1：并发用例在连接池上排队，模拟串行提交的事务
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLedger(t *testing.T, db *gorm.DB) *LedgerService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Kafka.Topic.RechargeResult = "recharge_result"
	cfg.Business.MaxRetryCount = 3
	return NewLedgerService(db, nil, cfg)
}

// createTestUser 直接落库一个账户，绕开注册流程
func createTestUser(t *testing.T, db *gorm.DB, userID string, balance, diamonds int64) {
	t.Helper()
	user := &model.User{
		UserID:   userID,
		Username: "13800000000",
		Password: "secret",
		Phone:    "13800000000",
		Balance:  balance,
		Diamonds: diamonds,
	}
	require.NoError(t, db.Create(user).Error)
}

func getTestUser(t *testing.T, db *gorm.DB, userID string) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, db.Where("user_id = ?", userID).First(&user).Error)
	return &user
}
