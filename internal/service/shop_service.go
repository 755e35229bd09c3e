package service

import (
	"context"

	"gameshop/internal/model"
	"gameshop/internal/repository"

	"gorm.io/gorm"
)

// ShopService 商城只读视图
type ShopService struct {
	itemRepo     *repository.ItemRepository
	skinRepo     *repository.SkinRepository
	rechargeRepo *repository.RechargeRepository
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{
		itemRepo:     repository.NewItemRepository(db),
		skinRepo:     repository.NewSkinRepository(db),
		rechargeRepo: repository.NewRechargeRepository(db),
	}
}

// ShopListItem 商城列表项，owned 表示该用户是否已拥有
type ShopListItem struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Owned  bool   `json:"owned"`
}

// ListItems 全部商品 + 该用户的拥有标记
// 拥有与否只看 user_skins 表里有没有记录，没有别的判定来源
func (s *ShopService) ListItems(ctx context.Context, userID string) ([]ShopListItem, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := s.skinRepo.ListOwnedItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]ShopListItem, 0, len(items))
	for _, item := range items {
		list = append(list, ShopListItem{
			ItemID: item.ItemID,
			Name:   item.Name,
			Price:  item.Price,
			Owned:  owned[item.ItemID],
		})
	}
	return list, nil
}

// ListRechargeRecords 充值记录分页查询
func (s *ShopService) ListRechargeRecords(ctx context.Context, userID string, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	return s.rechargeRepo.ListByUserID(ctx, userID, page, pageSize)
}

// GetRechargeRecord 按流水号查单条充值记录
func (s *ShopService) GetRechargeRecord(ctx context.Context, recordNo string) (*model.RechargeRecord, error) {
	return s.rechargeRepo.GetByRecordNo(ctx, recordNo)
}
