package model

import (
	"time"
)

// ============================================================================
// 充值常量
// ============================================================================

const (
	// DiamondExchangeRate 充值金额到钻石的固定兑换比例
	DiamondExchangeRate = 10

	RechargeStatusSuccess = "success"
)

// RechargeDenominations 允许的充值面额（元），其余金额一律拒绝
var RechargeDenominations = []int64{6, 30, 98, 198, 328, 648}

// IsValidRechargeAmount 金额是否在允许的面额集合内
func IsValidRechargeAmount(amount int64) bool {
	for _, d := range RechargeDenominations {
		if amount == d {
			return true
		}
	}
	return false
}

// ============================================================================
// 充值记录实体
// ============================================================================

// RechargeRecord 充值记录表
// 每笔成功的充值和会员购买都会追加一条记录，是对账的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 每条记录有全局唯一流水号 —— 便于排查
// 3. 会员购买虽然是扣减余额，但按正数金额记录并以 payment_method 区分
type RechargeRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordNo      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_no"` // 流水号（全局唯一）
	UserID        string    `gorm:"type:varchar(16);index;not null" json:"user_id"`
	Amount        int64     `gorm:"not null" json:"amount"` // 金额（元），始终为正数
	Status        string    `gorm:"type:varchar(20);not null;default:success" json:"status"`
	PaymentMethod string    `gorm:"type:varchar(32)" json:"payment_method"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (RechargeRecord) TableName() string {
	return "recharge_records"
}
