package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gameshop/internal/config"
	"gameshop/internal/infrastructure/database"
	"gameshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handlerTestSeq int64

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&handlerTestSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Kafka.Topic.RechargeResult = "recharge_result"
	return SetupRouter(db, nil, cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *response.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestRegisterRechargeBuyFlow(t *testing.T) {
	router := newTestRouter(t)

	// 注册
	resp := doJSON(t, router, http.MethodPost, "/api/register", gin.H{
		"phone":            "13800000001",
		"password":         "pw",
		"confirm_password": "pw",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	userID := resp.Data.(map[string]interface{})["user_id"].(string)
	require.NotEmpty(t, userID)

	// 登录
	resp = doJSON(t, router, http.MethodPost, "/api/login", gin.H{
		"user_id":  userID,
		"password": "pw",
	})
	assert.Equal(t, response.CodeSuccess, resp.Code)

	// 充值 30 元 -> 300 钻石
	resp = doJSON(t, router, http.MethodPost, "/api/recharge", gin.H{
		"user_id":        userID,
		"amount":         30,
		"payment_method": "card",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(300), resp.Data.(map[string]interface{})["new_diamonds"])

	// 买 100 钻的皮肤1
	resp = doJSON(t, router, http.MethodPost, "/api/buy_item", gin.H{
		"user_id": userID,
		"item_id": 1,
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(200), resp.Data.(map[string]interface{})["new_diamonds"])

	// 钻石余额
	resp = doJSON(t, router, http.MethodGet, "/api/diamonds/"+userID, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(200), resp.Data.(map[string]interface{})["diamonds"])

	// 商城列表带拥有标记
	resp = doJSON(t, router, http.MethodGet, "/api/shop_items/"+userID, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	items := resp.Data.([]interface{})
	require.Len(t, items, 6)
	for _, raw := range items {
		item := raw.(map[string]interface{})
		assert.Equal(t, item["item_id"] == float64(1), item["owned"])
	}
}

func TestRechargeInvalidAmountCode(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/register", gin.H{
		"phone":            "13800000001",
		"password":         "pw",
		"confirm_password": "pw",
	})
	userID := resp.Data.(map[string]interface{})["user_id"].(string)

	resp = doJSON(t, router, http.MethodPost, "/api/recharge", gin.H{
		"user_id": userID,
		"amount":  7,
	})
	assert.Equal(t, response.CodeInvalidAmount, resp.Code)
}

func TestBuyVIPViaHTTP(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/register", gin.H{
		"phone":            "13800000001",
		"password":         "pw",
		"confirm_password": "pw",
	})
	userID := resp.Data.(map[string]interface{})["user_id"].(string)

	// 余额不足
	resp = doJSON(t, router, http.MethodPost, "/api/buy_vip", gin.H{
		"user_id":  userID,
		"vip_type": "basic",
	})
	assert.Equal(t, response.CodeBalanceNotEnough, resp.Code)

	// 充 30 再买
	doJSON(t, router, http.MethodPost, "/api/recharge", gin.H{
		"user_id": userID,
		"amount":  30,
	})
	resp = doJSON(t, router, http.MethodPost, "/api/buy_vip", gin.H{
		"user_id":        userID,
		"vip_type":       "basic",
		"payment_method": "wechat",
	})
	assert.Equal(t, response.CodeSuccess, resp.Code)

	// 个人中心能看到会员状态
	resp = doJSON(t, router, http.MethodGet, "/api/user_center/"+userID, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	profile := resp.Data.(map[string]interface{})
	assert.Equal(t, "basic", profile["vip_type"])
	assert.NotEmpty(t, profile["vip_expire_at"])
}

func TestGetRechargeRecordViaHTTP(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/register", gin.H{
		"phone":            "13800000001",
		"password":         "pw",
		"confirm_password": "pw",
	})
	userID := resp.Data.(map[string]interface{})["user_id"].(string)

	doJSON(t, router, http.MethodPost, "/api/recharge", gin.H{
		"user_id": userID,
		"amount":  98,
	})

	// 先从列表里拿流水号，再按流水号单查
	resp = doJSON(t, router, http.MethodGet, "/api/recharge_records?user_id="+userID, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	list := resp.Data.(map[string]interface{})["list"].([]interface{})
	require.Len(t, list, 1)
	recordNo := list[0].(map[string]interface{})["record_no"].(string)

	resp = doJSON(t, router, http.MethodGet, "/api/recharge_record/"+recordNo, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	record := resp.Data.(map[string]interface{})
	assert.Equal(t, userID, record["user_id"])
	assert.Equal(t, float64(98), record["amount"])

	resp = doJSON(t, router, http.MethodGet, "/api/recharge_record/RCG0000000000", nil)
	assert.Equal(t, response.CodeNotFound, resp.Code)
}

func TestUnknownUserCode(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/diamonds/2025999", nil)
	assert.Equal(t, response.CodeUserNotFound, resp.Code)
}
