package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gameshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAllocatesSequentialIDs(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)

	year := time.Now().Format("2006")

	id1, err := svc.Register(context.Background(), "13800000001", "pw1")
	require.NoError(t, err)
	assert.Equal(t, year+"001", id1)

	id2, err := svc.Register(context.Background(), "13800000002", "pw2")
	require.NoError(t, err)
	assert.Equal(t, year+"002", id2)
}

// 序号过三位数后继续递增，不回绕也不排错序
func TestRegisterSequenceBeyondThreeDigits(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)

	year := time.Now().Format("2006")
	createTestUser(t, db, year+"999", 0, 0)

	id, err := svc.Register(context.Background(), "13800000001", "pw")
	require.NoError(t, err)
	assert.Equal(t, year+"1000", id)

	id, err = svc.Register(context.Background(), "13800000002", "pw")
	require.NoError(t, err)
	assert.Equal(t, year+"1001", id)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)
	createTestUser(t, db, "2025001", 0, 0)

	assert.NoError(t, svc.Login(context.Background(), "2025001", "secret"))
	assert.ErrorIs(t, svc.Login(context.Background(), "2025001", "wrong"), ErrInvalidCredentials)
	// 用户不存在和密码错误报同一个错
	assert.ErrorIs(t, svc.Login(context.Background(), "2025999", "secret"), ErrInvalidCredentials)
}

func TestGetDiamonds(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)
	createTestUser(t, db, "2025001", 0, 420)

	diamonds, err := svc.GetDiamonds(context.Background(), "2025001")
	require.NoError(t, err)
	assert.Equal(t, int64(420), diamonds)

	_, err = svc.GetDiamonds(context.Background(), "2025999")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	accountSvc := NewAccountService(db)
	ledgerSvc := newTestLedger(t, db)
	createTestUser(t, db, "2025001", 0, 1000)

	// 没皮肤时返回空列表而不是 null
	profile, err := accountSvc.GetProfile(context.Background(), "2025001")
	require.NoError(t, err)
	assert.NotNil(t, profile.Skins)
	assert.Empty(t, profile.Skins)

	_, err = ledgerSvc.PurchaseItem(context.Background(), "2025001", 1)
	require.NoError(t, err)
	_, err = ledgerSvc.PurchaseItem(context.Background(), "2025001", 2)
	require.NoError(t, err)

	profile, err = accountSvc.GetProfile(context.Background(), "2025001")
	require.NoError(t, err)
	assert.Equal(t, "2025001", profile.UserID)
	assert.Equal(t, int64(700), profile.Diamonds)
	assert.Equal(t, []string{"皮肤1", "皮肤2"}, profile.Skins)

	_, err = accountSvc.GetProfile(context.Background(), "2025999")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestRegisteredUserStartsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)

	id, err := svc.Register(context.Background(), "13800000001", "pw")
	require.NoError(t, err)

	user := getTestUser(t, db, id)
	assert.Zero(t, user.Balance)
	assert.Zero(t, user.Diamonds)
	assert.Empty(t, user.VIPType)
	assert.Equal(t, fmt.Sprintf("%s001", time.Now().Format("2006")), user.UserID)
}
