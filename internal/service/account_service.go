package service

import (
	"context"
	"errors"

	"gameshop/internal/model"
	"gameshop/internal/repository"

	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("用户名或密码错误")

// AccountService 注册、登录和用户侧只读视图
// 认证只做明文比对，和账本核心完全解耦；账本的正确性不依赖这里
type AccountService struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	skinRepo *repository.SkinRepository
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		skinRepo: repository.NewSkinRepository(db),
	}
}

// Register 注册用户并分配用户ID（当前年份 + 当前最大序号+1）
// 序号分配和写入在同一事务里；并发注册撞出相同ID时主键冲突回滚，由调用方重试
func (s *AccountService) Register(ctx context.Context, phone, password string) (string, error) {
	var userID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := s.userRepo.NextUserID(ctx, tx)
		if err != nil {
			return err
		}

		user := &model.User{
			UserID:   id,
			Username: phone,
			Password: password,
			Phone:    phone,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}

		userID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Login 明文比对，成功返回 nil；用户不存在和密码错误统一报一个错，不泄露哪个错了
func (s *AccountService) Login(ctx context.Context, userID, password string) error {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if user.Password != password {
		return ErrInvalidCredentials
	}
	return nil
}

// GetDiamonds 当前钻石余额
func (s *AccountService) GetDiamonds(ctx context.Context, userID string) (int64, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Diamonds, nil
}

// Profile 个人中心视图
type Profile struct {
	UserID      string   `json:"user_id"`
	Phone       string   `json:"phone"`
	Diamonds    int64    `json:"diamonds"`
	Balance     int64    `json:"balance"`
	VIPType     string   `json:"vip_type"`
	VIPExpireAt string   `json:"vip_expire_at,omitempty"`
	Skins       []string `json:"skins"`
}

// GetProfile 个人中心：基本信息 + 已拥有的皮肤名称
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skins, err := s.skinRepo.ListOwnedNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	if skins == nil {
		skins = []string{}
	}

	profile := &Profile{
		UserID:   user.UserID,
		Phone:    user.Phone,
		Diamonds: user.Diamonds,
		Balance:  user.Balance,
		VIPType:  user.VIPType,
		Skins:    skins,
	}
	if user.VIPExpireAt != nil {
		profile.VIPExpireAt = user.VIPExpireAt.Format("2006-01-02 15:04:05")
	}
	return profile, nil
}
