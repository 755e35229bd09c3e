package repository

import (
	"context"
	"errors"

	"gameshop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSkinAlreadyOwned = errors.New("你已经拥有该皮肤")

type SkinRepository struct {
	db *gorm.DB
}

func NewSkinRepository(db *gorm.DB) *SkinRepository {
	return &SkinRepository{db: db}
}

// Exists 是否已拥有该皮肤，tx 为 nil 时走普通连接
func (r *SkinRepository) Exists(ctx context.Context, tx *gorm.DB, userID string, itemID int64) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.WithContext(ctx).
		Model(&model.UserSkin{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert 写入拥有记录
//
// 【关键点】唯一索引 (user_id, item_id) + ON CONFLICT DO NOTHING：
// 两个并发购买同一皮肤的事务里，第二个 INSERT 影响 0 行，
// 返回 ErrSkinAlreadyOwned 让外层事务整体回滚，不会出现重复扣费
func (r *SkinRepository) Insert(ctx context.Context, tx *gorm.DB, userID string, itemID int64) error {
	skin := &model.UserSkin{
		UserID: userID,
		ItemID: itemID,
	}

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(skin)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSkinAlreadyOwned
	}
	return nil
}

// ListOwnedItemIDs 用户拥有的商品ID集合，商城列表用它标记 owned
func (r *SkinRepository) ListOwnedItemIDs(ctx context.Context, userID string) (map[int64]bool, error) {
	var itemIDs []int64
	err := r.db.WithContext(ctx).
		Model(&model.UserSkin{}).
		Where("user_id = ?", userID).
		Pluck("item_id", &itemIDs).Error
	if err != nil {
		return nil, err
	}

	owned := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		owned[id] = true
	}
	return owned, nil
}

// ListOwnedNames 用户拥有的皮肤名称，个人中心展示用
func (r *SkinRepository) ListOwnedNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.UserSkin{}).
		Joins("JOIN shop_items ON shop_items.item_id = user_skins.item_id").
		Where("user_skins.user_id = ?", userID).
		Order("user_skins.id ASC").
		Pluck("shop_items.name", &names).Error
	return names, err
}
