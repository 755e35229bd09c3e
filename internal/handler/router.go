package handler

import (
	"gameshop/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组
	api := r.Group("/api")
	{
		// 注册 / 登录
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		// 账本操作
		api.POST("/recharge", h.Recharge)
		api.POST("/buy_item", h.BuyItem)
		api.POST("/buy_vip", h.BuyVIP)

		// 只读视图
		api.GET("/diamonds/:user_id", h.GetDiamonds)
		api.GET("/shop_items/:user_id", h.GetShopItems)
		api.GET("/user_center/:user_id", h.GetUserCenter)
		api.GET("/recharge_records", h.ListRechargeRecords)
		api.GET("/recharge_record/:record_no", h.GetRechargeRecord)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
