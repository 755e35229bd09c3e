package repository

import (
	"context"
	"errors"

	"gameshop/internal/model"

	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("商品不存在")

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByID 事务内查询商品，tx 为 nil 时走普通连接
func (r *ItemRepository) GetByID(ctx context.Context, tx *gorm.DB, itemID int64) (*model.ShopItem, error) {
	if tx == nil {
		tx = r.db
	}
	var item model.ShopItem
	err := tx.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*model.ShopItem, error) {
	var items []*model.ShopItem
	err := r.db.WithContext(ctx).Order("item_id ASC").Find(&items).Error
	return items, err
}

// Count 商品数量，用于判断是否需要灌入初始目录
func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ShopItem{}).Count(&count).Error
	return count, err
}

func (r *ItemRepository) BatchCreate(ctx context.Context, items []model.ShopItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}
