package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gameshop/internal/config"
	"gameshop/internal/infrastructure/lock"
	"gameshop/internal/model"
	"gameshop/internal/repository"
	"gameshop/pkg/idgen"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount  = errors.New("不支持的充值金额")
	ErrInvalidVIPType = errors.New("不支持的会员类型")
)

// LedgerService 账本服务，余额和钻石的所有变动都从这里走
//
// 【核心约束】三个操作（充值、买皮肤、买会员）各自是一个数据库事务：
// 前置校验、扣减/入账、流水写入要么全部生效，要么全部回滚。
// 校验必须放进事务里的条件 UPDATE / 唯一索引，
// 事务外先查一次再更新的写法在并发下必然超扣或重复购买。
type LedgerService struct {
	db           *gorm.DB
	cfg          *config.Config
	locks        *lock.Factory
	userRepo     *repository.UserRepository
	itemRepo     *repository.ItemRepository
	skinRepo     *repository.SkinRepository
	rechargeRepo *repository.RechargeRepository
	outboxRepo   *repository.OutboxRepository
}

func NewLedgerService(db *gorm.DB, locks *lock.Factory, cfg *config.Config) *LedgerService {
	if locks == nil {
		locks = lock.NewFactory(nil)
	}
	return &LedgerService{
		db:           db,
		cfg:          cfg,
		locks:        locks,
		userRepo:     repository.NewUserRepository(db),
		itemRepo:     repository.NewItemRepository(db),
		skinRepo:     repository.NewSkinRepository(db),
		rechargeRepo: repository.NewRechargeRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
	}
}

// Recharge 充值：追加充值记录、余额 +amount、钻石 +amount*10，一个事务完成
//
// 金额必须在固定面额集合内，校验失败时不产生任何写入。
// 余额/钻石的增加是数据库侧的相对增量，两笔并发充值都会生效。
// 返回值是提交后立即可读的钻石余额。
func (s *LedgerService) Recharge(ctx context.Context, userID string, amount int64, paymentMethod string) (int64, error) {
	if !model.IsValidRechargeAmount(amount) {
		return 0, ErrInvalidAmount
	}

	recordNo := idgen.GenerateRecordNo()

	userLock := s.locks.ForUser(userID, recordNo)
	if err := userLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return 0, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer userLock.Unlock(ctx)

	var newDiamonds int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		diamonds := amount * model.DiamondExchangeRate
		if err := s.userRepo.AddBalanceAndDiamonds(ctx, tx, userID, amount, diamonds); err != nil {
			return err
		}

		record := &model.RechargeRecord{
			RecordNo:      recordNo,
			UserID:        userID,
			Amount:        amount,
			Status:        model.RechargeStatusSuccess,
			PaymentMethod: paymentMethod,
		}
		if err := s.rechargeRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("写入充值记录失败: %w", err)
		}

		user, err := s.userRepo.GetByUserIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		newDiamonds = user.Diamonds

		return s.createOutboxMessage(ctx, tx, recordNo, "recharge", userID, amount, newDiamonds, paymentMethod)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("充值成功: recordNo=%s, userID=%s, amount=%d", recordNo, userID, amount)
	return newDiamonds, nil
}

// PurchaseItem 用钻石购买商城商品
//
// 事务内的执行顺序：
//  1. 用户、商品存在性校验
//  2. 写入拥有记录（唯一索引 + DO NOTHING，重复购买在这里拦截）
//  3. 条件扣减钻石（diamonds >= price 写在 WHERE 里）
//
// 同一用户的两个并发购买：同一件商品只有一个能写入拥有记录；
// 不同商品但钻石合计不够时，后提交的扣减条件不满足，事务整体回滚。
func (s *LedgerService) PurchaseItem(ctx context.Context, userID string, itemID int64) (int64, error) {
	userLock := s.locks.ForUser(userID, fmt.Sprintf("buy_item:%d", itemID))
	if err := userLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return 0, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer userLock.Unlock(ctx)

	var newDiamonds int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByUserIDTx(ctx, tx, userID); err != nil {
			return err
		}

		item, err := s.itemRepo.GetByID(ctx, tx, itemID)
		if err != nil {
			return err
		}

		if err := s.skinRepo.Insert(ctx, tx, userID, itemID); err != nil {
			return err
		}

		if err := s.userRepo.DeductDiamonds(ctx, tx, userID, item.Price); err != nil {
			return err
		}

		user, err := s.userRepo.GetByUserIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		newDiamonds = user.Diamonds
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("购买商品成功: userID=%s, itemID=%d", userID, itemID)
	return newDiamonds, nil
}

// PurchaseVIP 用余额购买会员
//
// 扣减余额和写入会员信息是一条条件 UPDATE；会员到期时间直接覆盖为
// now+30天，不做叠加续期。成功后按正数金额追加一条充值记录作审计，
// 以 payment_method 区分。返回的钻石余额不受本操作影响，
// 只是为了和其他两个操作保持同样的响应形状。
func (s *LedgerService) PurchaseVIP(ctx context.Context, userID, vipType, paymentMethod string) (int64, error) {
	price, ok := model.VIPPrices[vipType]
	if !ok {
		return 0, ErrInvalidVIPType
	}

	recordNo := idgen.GenerateRecordNo()

	userLock := s.locks.ForUser(userID, recordNo)
	if err := userLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return 0, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer userLock.Unlock(ctx)

	var newDiamonds int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expireAt := time.Now().Add(model.VIPDuration)
		if err := s.userRepo.DeductBalanceAndSetVIP(ctx, tx, userID, price, vipType, expireAt); err != nil {
			return err
		}

		record := &model.RechargeRecord{
			RecordNo:      recordNo,
			UserID:        userID,
			Amount:        price,
			Status:        model.RechargeStatusSuccess,
			PaymentMethod: paymentMethod,
		}
		if err := s.rechargeRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("写入充值记录失败: %w", err)
		}

		user, err := s.userRepo.GetByUserIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		newDiamonds = user.Diamonds

		return s.createOutboxMessage(ctx, tx, recordNo, "buy_vip", userID, price, newDiamonds, paymentMethod)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("购买会员成功: recordNo=%s, userID=%s, vipType=%s", recordNo, userID, vipType)
	return newDiamonds, nil
}

// createOutboxMessage 与账本变更同事务写入发件箱，由后台任务异步投递
func (s *LedgerService) createOutboxMessage(ctx context.Context, tx *gorm.DB, recordNo, eventType, userID string, amount, diamonds int64, paymentMethod string) error {
	msgPayload := map[string]interface{}{
		"record_no":      recordNo,
		"type":           eventType,
		"user_id":        userID,
		"amount":         amount,
		"diamonds":       diamonds,
		"payment_method": paymentMethod,
		"occurred_at":    time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(msgPayload)

	outboxMsg := &model.OutboxMessage{
		MessageKey: recordNo,
		Topic:      s.cfg.Kafka.Topic.RechargeResult,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}
