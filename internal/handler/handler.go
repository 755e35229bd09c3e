package handler

import (
	"errors"
	"strconv"

	"gameshop/internal/config"
	"gameshop/internal/infrastructure/lock"
	"gameshop/internal/repository"
	"gameshop/internal/service"
	"gameshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	accountService *service.AccountService
	ledgerService  *service.LedgerService
	shopService    *service.ShopService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		accountService: service.NewAccountService(db),
		ledgerService:  service.NewLedgerService(db, lock.NewFactory(rdb), cfg),
		shopService:    service.NewShopService(db),
	}
}

// ledgerError 把账本错误映射到业务错误码
// 除 StorageFailure（落到 500）之外的错误对该次请求都是终态，重试也不会成功
func ledgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		response.BusinessError(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, repository.ErrItemNotFound):
		response.BusinessError(c, response.CodeItemNotFound, err.Error())
	case errors.Is(err, repository.ErrSkinAlreadyOwned):
		response.BusinessError(c, response.CodeAlreadyOwned, err.Error())
	case errors.Is(err, repository.ErrDiamondsNotEnough):
		response.BusinessError(c, response.CodeDiamondsNotEnough, err.Error())
	case errors.Is(err, repository.ErrBalanceNotEnough):
		response.BusinessError(c, response.CodeBalanceNotEnough, err.Error())
	case errors.Is(err, service.ErrInvalidAmount):
		response.BusinessError(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrInvalidVIPType):
		response.BusinessError(c, response.CodeInvalidVIPType, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 注册 / 登录
// ============================================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Register 注册
// POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if req.Password != req.ConfirmPassword {
		response.ParamError(c, "两次输入的密码不一致")
		return
	}

	userID, err := h.accountService.Register(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		response.ServerError(c, "注册失败，请重试")
		return
	}

	response.Success(c, gin.H{
		"user_id": userID,
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录（明文比对，认证安全不在账本核心范围内）
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.accountService.Login(c.Request.Context(), req.UserID, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"user_id": req.UserID,
	})
}

// ============================================================
// 账本操作接口
// ============================================================

// RechargeRequest 充值请求
type RechargeRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// Recharge 充值
// POST /api/recharge
//
// 【关键点】充值是资金入口，需要保证：
// 1. 面额校验：不在面额集合内的金额在任何写入之前拒绝
// 2. 原子性：充值记录、余额、钻石必须同时生效或同时失败
// 3. 并发安全：增量在数据库侧表达，同一用户并发充值不丢更新
func (h *Handler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	newDiamonds, err := h.ledgerService.Recharge(c.Request.Context(), req.UserID, req.Amount, req.PaymentMethod)
	if err != nil {
		ledgerError(c, err)
		return
	}

	response.Success(c, gin.H{
		"new_diamonds": newDiamonds,
	})
}

// BuyItemRequest 购买商品请求
type BuyItemRequest struct {
	UserID string `json:"user_id" binding:"required"`
	ItemID int64  `json:"item_id" binding:"required"`
}

// BuyItem 用钻石购买商城商品
// POST /api/buy_item
func (h *Handler) BuyItem(c *gin.Context) {
	var req BuyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	newDiamonds, err := h.ledgerService.PurchaseItem(c.Request.Context(), req.UserID, req.ItemID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	response.Success(c, gin.H{
		"new_diamonds": newDiamonds,
	})
}

// BuyVIPRequest 购买会员请求
type BuyVIPRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	VIPType       string `json:"vip_type" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// BuyVIP 用余额购买会员
// POST /api/buy_vip
func (h *Handler) BuyVIP(c *gin.Context) {
	var req BuyVIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	newDiamonds, err := h.ledgerService.PurchaseVIP(c.Request.Context(), req.UserID, req.VIPType, req.PaymentMethod)
	if err != nil {
		ledgerError(c, err)
		return
	}

	response.Success(c, gin.H{
		"new_diamonds": newDiamonds,
	})
}

// ============================================================
// 只读视图接口
// ============================================================

// GetDiamonds 查询钻石余额
// GET /api/diamonds/:user_id
func (h *Handler) GetDiamonds(c *gin.Context) {
	userID := c.Param("user_id")

	diamonds, err := h.accountService.GetDiamonds(c.Request.Context(), userID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	response.Success(c, gin.H{
		"diamonds": diamonds,
	})
}

// GetShopItems 商城商品列表及拥有情况
// GET /api/shop_items/:user_id
func (h *Handler) GetShopItems(c *gin.Context) {
	userID := c.Param("user_id")

	items, err := h.shopService.ListItems(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, items)
}

// GetUserCenter 个人中心
// GET /api/user_center/:user_id
func (h *Handler) GetUserCenter(c *gin.Context) {
	userID := c.Param("user_id")

	profile, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		ledgerError(c, err)
		return
	}

	response.Success(c, profile)
}

// GetRechargeRecord 按流水号查询充值记录
// GET /api/recharge_record/:record_no
func (h *Handler) GetRechargeRecord(c *gin.Context) {
	recordNo := c.Param("record_no")

	record, err := h.shopService.GetRechargeRecord(c.Request.Context(), recordNo)
	if err != nil {
		if errors.Is(err, repository.ErrRechargeRecordNotFound) {
			response.Error(c, response.CodeNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, record)
}

// ListRechargeRecords 充值记录列表
// GET /api/recharge_records?user_id=xxx&page=1&page_size=10
func (h *Handler) ListRechargeRecords(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		response.ParamError(c, "user_id 参数不能为空")
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	records, total, err := h.shopService.ListRechargeRecords(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
