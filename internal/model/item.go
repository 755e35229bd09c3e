package model

// ShopItem 商城商品表
// 建表时一次性灌入固定商品，之后只读，账本服务不会修改它
type ShopItem struct {
	ItemID int64  `gorm:"primaryKey;autoIncrement" json:"item_id"`
	Name   string `gorm:"type:varchar(64);not null" json:"name"`
	Price  int64  `gorm:"not null" json:"price"` // 价格（钻石）
}

func (ShopItem) TableName() string {
	return "shop_items"
}

// DefaultShopItems 初始商品目录，表为空时灌入一次
var DefaultShopItems = []ShopItem{
	{Name: "皮肤1", Price: 100},
	{Name: "皮肤2", Price: 200},
	{Name: "皮肤3", Price: 300},
	{Name: "皮肤4", Price: 400},
	{Name: "皮肤5", Price: 500},
	{Name: "皮肤6", Price: 600},
}
