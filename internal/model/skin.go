package model

import (
	"time"
)

// UserSkin 用户皮肤拥有表
// (user_id, item_id) 上的唯一索引是"是否拥有"的唯一判定依据，
// 同一对 (user_id, item_id) 至多一条记录，购买成功时写入，之后不会删除
type UserSkin struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_user_item" json:"user_id"`
	ItemID    int64     `gorm:"not null;uniqueIndex:uk_user_item" json:"item_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserSkin) TableName() string {
	return "user_skins"
}
