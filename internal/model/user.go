package model

import (
	"time"
)

// ============================================================================
// VIP 类型常量
// ============================================================================

const (
	VIPTypeNone    = ""        // 非会员
	VIPTypeBasic   = "basic"   // 小会员
	VIPTypePremium = "premium" // 大会员
)

// VIPPrices 会员价格表（余额扣费，不是钻石）
var VIPPrices = map[string]int64{
	VIPTypeBasic:   30,
	VIPTypePremium: 120,
}

// VIPDuration 会员有效期，购买时覆盖写入，不支持叠加续期
const VIPDuration = 30 * 24 * time.Hour

// User 用户账户表
// 记录用户的余额和钻石余额，是整个平台的核心数据
//
// 【重要】余额字段约束：
// 1. balance >= 0 且 diamonds >= 0 在任何时刻都成立
// 2. 余额变动只能由账本服务在事务内以相对增量方式执行
// 3. 任何读-改-写两步走的更新都是禁止的（并发下会丢失更新）
type User struct {
	UserID      string     `gorm:"type:varchar(16);primaryKey" json:"user_id"` // 形如 2025001，注册时按当前最大序号+1 分配
	Username    string     `gorm:"type:varchar(64);not null" json:"username"`
	Password    string     `gorm:"type:varchar(64);not null" json:"-"` // 明文比对，认证在账本核心之外
	Phone       string     `gorm:"type:varchar(20)" json:"phone"`
	Balance     int64      `gorm:"not null;default:0" json:"balance"`  // 余额（元），只能购买会员
	Diamonds    int64      `gorm:"not null;default:0" json:"diamonds"` // 钻石余额，只能购买商城商品
	VIPType     string     `gorm:"column:vip_type;type:varchar(20);not null;default:''" json:"vip_type"`
	VIPExpireAt *time.Time `gorm:"column:vip_expire_at" json:"vip_expire_at"` // 仅当 vip_type 非空时有意义
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
