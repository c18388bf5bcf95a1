package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

const (
	bcryptCost     = 12
	minPasswordLen = 6
	minUsernameLen = 3
	maxUsernameLen = 30
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, username, email, password string) (*User, error)

	// Login 用户登录，停用账号返回ErrAccountInactive
	Login(ctx context.Context, email, password string) (*User, error)

	// GetActiveUser 查询未停用的用户（认证中间件使用）
	GetActiveUser(ctx context.Context, id uint) (*User, error)

	// UpdateProfile 修改用户名
	UpdateProfile(ctx context.Context, id uint, username string) (*User, error)

	// Deactivate 管理员停用账号，actorID为操作人
	Deactivate(ctx context.Context, actorID, targetID uint) (*User, error)
}

type service struct {
	repo       Repository
	bcryptCost int
}

// Option 用户服务可选配置
type Option func(*service)

// WithBcryptCost 设置bcrypt代价(测试中使用bcrypt.MinCost加速)
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.bcryptCost = cost }
}

// NewService 创建用户服务
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, bcryptCost: bcryptCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 用户注册
// 业务规则：
// 1. 用户名3-30位，只能包含字母、数字、下划线
// 2. 邮箱格式校验
// 3. 密码至少6位，bcrypt加密（cost=12）
// 4. 邮箱/用户名唯一性最终由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, email, password string) (*User, error) {
	user := NewUser(username, email, "")

	var details []apperrors.FieldError
	if d, ok := checkUsername(user.Username); !ok {
		details = append(details, d)
	}
	if !emailPattern.MatchString(user.Email) {
		details = append(details, apperrors.FieldError{Field: "email", Message: "Please enter a valid email"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation(details...)
	}
	if len(password) < minPasswordLen {
		return nil, apperrors.ErrWeakPassword
	}

	exists, err := s.repo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUsernameDuplicate
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}
	user.Password = string(hashed)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err // Repository已转换为业务错误
	}
	return user, nil
}

// Login 用户登录
// 邮箱不存在和密码错误返回同一个错误，避免泄露邮箱是否注册
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "failed to verify password")
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return user, nil
}

// GetActiveUser 查询用户，不存在或已停用都视为Token无效
func (s *service) GetActiveUser(ctx context.Context, id uint) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return user, nil
}

// UpdateProfile 修改用户名，规则与注册相同
// 用户名未变化时直接返回
func (s *service) UpdateProfile(ctx context.Context, id uint, username string) (*User, error) {
	user, err := s.GetActiveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if d, ok := checkUsername(username); !ok {
		return nil, apperrors.Validation(d)
	}
	if username == user.Username {
		return user, nil
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrUsernameDuplicate
	}

	user.Rename(username)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate 停用账号
// 管理员不能停用自己；已停用的账号重复停用视为成功
func (s *service) Deactivate(ctx context.Context, actorID, targetID uint) (*User, error) {
	if actorID == targetID {
		return nil, apperrors.ErrSelfDeactivation
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return user, nil
	}

	user.Deactivate()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func checkUsername(username string) (apperrors.FieldError, bool) {
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return apperrors.FieldError{Field: "username", Message: "Username must be between 3 and 30 characters"}, false
	}
	if !usernamePattern.MatchString(username) {
		return apperrors.FieldError{Field: "username", Message: "Username may only contain letters, numbers and underscores"}, false
	}
	return apperrors.FieldError{}, true
}
