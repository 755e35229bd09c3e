package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gameshop/internal/model"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrBalanceNotEnough  = errors.New("余额不足，请先充值")
	ErrDiamondsNotEnough = errors.New("钻石余额不足")
)

// 用户ID中序号的起始下标，前 4 位是年份
const userIDSeqOffset = 4

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	return r.getByUserID(ctx, r.db, userID)
}

// GetByUserIDTx 事务内读取，供账本服务在同一事务里做前置校验
func (r *UserRepository) GetByUserIDTx(ctx context.Context, tx *gorm.DB, userID string) (*model.User, error) {
	return r.getByUserID(ctx, tx, userID)
}

func (r *UserRepository) getByUserID(ctx context.Context, db *gorm.DB, userID string) (*model.User, error) {
	var user model.User
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// NextUserID 分配下一个用户ID：当前最大序号 + 1，形如 2025001
//
// 按长度再按字典序取最大，序号超过三位数后（2025999 -> 20251000）
// 纯字典序会排错，LENGTH 优先保证取到的确实是最大序号
func (r *UserRepository) NextUserID(ctx context.Context, tx *gorm.DB) (string, error) {
	var lastID string
	err := tx.WithContext(ctx).
		Model(&model.User{}).
		Select("user_id").
		Order("LENGTH(user_id) DESC, user_id DESC").
		Limit(1).
		Scan(&lastID).Error
	if err != nil {
		return "", err
	}

	year := time.Now().Format("2006")
	seq := 1
	if len(lastID) > userIDSeqOffset {
		last, err := strconv.Atoi(lastID[userIDSeqOffset:])
		if err != nil {
			return "", fmt.Errorf("解析用户ID序号失败: %w", err)
		}
		seq = last + 1
	}
	return fmt.Sprintf("%s%03d", year, seq), nil
}

// AddBalanceAndDiamonds 充值入账：余额和钻石在一条 UPDATE 里做相对增量
//
// 【关键点】增量必须在数据库侧表达（balance = balance + ?），
// 两笔并发充值各自的增量都会生效，不存在丢失更新
func (r *UserRepository) AddBalanceAndDiamonds(ctx context.Context, tx *gorm.DB, userID string, amount, diamonds int64) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":  gorm.Expr("balance + ?", amount),
			"diamonds": gorm.Expr("diamonds + ?", diamonds),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeductDiamonds 扣减钻石，余额校验放在 UPDATE 的 WHERE 条件里
//
// 【关键点】"检查+扣减"必须是一条语句。先 SELECT 再 UPDATE 两步走，
// 并发下两个请求都能通过检查，合计扣出负数
func (r *UserRepository) DeductDiamonds(ctx context.Context, tx *gorm.DB, userID string, amount int64) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND diamonds >= ?", userID, amount).
		Update("diamonds", gorm.Expr("diamonds - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// 条件没命中只有两种可能：用户不存在，或钻石不够。
		// 重读只用来区分这两种情况，不能再比较余额——
		// REPEATABLE READ 下重读到的是事务快照里的旧值，
		// 按旧值判断会把并发输家误判成内部错误
		if _, err := r.getByUserID(ctx, tx, userID); err != nil {
			return err
		}
		return ErrDiamondsNotEnough
	}

	return nil
}

// DeductBalanceAndSetVIP 购买会员：扣余额、写会员信息，一条条件 UPDATE 完成
func (r *UserRepository) DeductBalanceAndSetVIP(ctx context.Context, tx *gorm.DB, userID string, price int64, vipType string, expireAt time.Time) error {
	result := tx.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND balance >= ?", userID, price).
		Updates(map[string]interface{}{
			"balance":       gorm.Expr("balance - ?", price),
			"vip_type":      vipType,
			"vip_expire_at": expireAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// 同 DeductDiamonds：user_id 存在则只可能是余额不足
		if _, err := r.getByUserID(ctx, tx, userID); err != nil {
			return err
		}
		return ErrBalanceNotEnough
	}

	return nil
}
