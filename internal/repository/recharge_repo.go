package repository

import (
	"context"
	"errors"

	"gameshop/internal/model"

	"gorm.io/gorm"
)

var ErrRechargeRecordNotFound = errors.New("充值记录不存在")

type RechargeRepository struct {
	db *gorm.DB
}

func NewRechargeRepository(db *gorm.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

// Create 追加一条充值记录，只在账本事务内调用；记录落库后不再修改
func (r *RechargeRepository) Create(ctx context.Context, tx *gorm.DB, record *model.RechargeRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *RechargeRepository) GetByRecordNo(ctx context.Context, recordNo string) (*model.RechargeRecord, error) {
	var record model.RechargeRecord
	err := r.db.WithContext(ctx).Where("record_no = ?", recordNo).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRechargeRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *RechargeRepository) ListByUserID(ctx context.Context, userID string, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	var records []*model.RechargeRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&model.RechargeRecord{}).Where("user_id = ?", userID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error

	return records, total, err
}
